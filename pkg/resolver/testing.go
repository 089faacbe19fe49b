package resolver

import (
	"context"
	"time"

	"github.com/droidnav/droidnav/pkg/transport"
)

// NewTestEngine creates an Engine with injected sleep and clock functions.
// This should only be used in tests.
func NewTestEngine(t transport.Transport, sleep func(context.Context, time.Duration) error, now func() time.Time) *Engine {
	e := New(t)
	if sleep != nil {
		e.sleep = sleep
	}
	if now != nil {
		e.now = now
	}
	return e
}
