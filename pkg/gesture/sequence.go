// Package gesture records and replays timed touch-event sequences.
//
// A Sequence is immutable once recorded: an ordered list of events with
// millisecond offsets relative to the first event. It serializes to JSON
// and can be replayed any number of times, optionally time-scaled.
package gesture

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
)

// Kind is the touch primitive of one event.
type Kind string

// Event kinds.
const (
	KindTap       Kind = "tap"
	KindSwipe     Kind = "swipe"
	KindLongPress Kind = "longPress"
	KindDoubleTap Kind = "doubleTap"
)

// Event is one timed touch event. OffsetMs is the time since the start of
// the recording; the first event of a sequence has offset 0.
type Event struct {
	Kind       Kind  `json:"kind"`
	X          int   `json:"x"`
	Y          int   `json:"y"`
	X2         int   `json:"x2,omitempty"`
	Y2         int   `json:"y2,omitempty"`
	DurationMs int   `json:"durationMs,omitempty"`
	OffsetMs   int64 `json:"offsetMs"`
}

// Validate checks an event for replayability.
func (e Event) Validate() error {
	switch e.Kind {
	case KindTap, KindSwipe, KindLongPress, KindDoubleTap:
	default:
		return core.ErrInvalidConfig.WithMessagef("unknown gesture kind %q", e.Kind)
	}
	if e.OffsetMs < 0 {
		return core.ErrInvalidConfig.WithMessage("gesture offset must not be negative")
	}
	return nil
}

// Sequence is an ordered, replayable list of touch events.
type Sequence []Event

// Duration returns the span from the first to the last event offset.
func (s Sequence) Duration() time.Duration {
	if len(s) == 0 {
		return 0
	}
	return time.Duration(s[len(s)-1].OffsetMs-s[0].OffsetMs) * time.Millisecond
}

// Validate checks every event and that offsets never decrease.
func (s Sequence) Validate() error {
	var prev int64
	for i, ev := range s {
		if err := ev.Validate(); err != nil {
			return err
		}
		if ev.OffsetMs < prev {
			return core.ErrInvalidConfig.WithMessagef("event %d offset %dms precedes event %d", i, ev.OffsetMs, i-1)
		}
		prev = ev.OffsetMs
	}
	return nil
}

// Save writes the sequence to path as a JSON list of event records.
func (s Sequence) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a sequence from a JSON file and validates it.
func Load(path string) (Sequence, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided recording file
	if err != nil {
		return nil, err
	}
	var s Sequence
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("%s is not a gesture recording", path).WithCause(err)
	}
	if len(s) == 0 {
		return nil, core.ErrInvalidConfig.WithMessagef("%s contains no events", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Describe returns a short human-readable summary.
func (s Sequence) Describe() string {
	return fmt.Sprintf("%d event(s) over %s", len(s), s.Duration())
}
