package gesture

import (
	"context"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/logger"
)

// Toucher is the slice of the device transport replay needs.
type Toucher interface {
	Tap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error
	LongPress(ctx context.Context, x, y, durationMs int) error
	DoubleTap(ctx context.Context, x, y int) error
}

// Replayer dispatches recorded sequences against a device.
type Replayer struct {
	toucher Toucher
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewReplayer creates a replayer on top of a toucher.
func NewReplayer(t Toucher) *Replayer {
	return &Replayer{toucher: t, sleep: sleepContext}
}

// NewTestReplayer creates a replayer with an injected sleep function.
// This should only be used in tests.
func NewTestReplayer(t Toucher, sleep func(context.Context, time.Duration) error) *Replayer {
	return &Replayer{toucher: t, sleep: sleep}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Replay dispatches every event of the sequence in order, sleeping the
// recorded inter-event gap divided by speedScale before each event after
// the first. Scaling never reorders events. A failed dispatch aborts the
// replay and reports the failing event index; individual events are not
// retried.
func (r *Replayer) Replay(ctx context.Context, seq Sequence, speedScale float64) error {
	if speedScale <= 0 {
		return core.ErrInvalidConfig.WithMessagef("speed scale must be positive, got %v", speedScale)
	}
	if err := seq.Validate(); err != nil {
		return err
	}

	logger.Info("replaying %s at %gx", seq.Describe(), speedScale)

	var prev int64
	for i, ev := range seq {
		if i > 0 {
			gap := time.Duration(float64(ev.OffsetMs-prev)/speedScale) * time.Millisecond
			if gap > 0 {
				if err := r.sleep(ctx, gap); err != nil {
					return err
				}
			}
		}
		prev = ev.OffsetMs

		if err := r.dispatch(ctx, ev); err != nil {
			return core.ErrTransport.
				WithMessagef("replay aborted at event %d (%s)", i, ev.Kind).
				WithDetails(map[string]interface{}{"eventIndex": i}).
				WithCause(err)
		}
	}
	return nil
}

func (r *Replayer) dispatch(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindTap:
		return r.toucher.Tap(ctx, ev.X, ev.Y)
	case KindSwipe:
		return r.toucher.Swipe(ctx, ev.X, ev.Y, ev.X2, ev.Y2, ev.DurationMs)
	case KindLongPress:
		return r.toucher.LongPress(ctx, ev.X, ev.Y, ev.DurationMs)
	case KindDoubleTap:
		return r.toucher.DoubleTap(ctx, ev.X, ev.Y)
	default:
		return core.ErrInvalidConfig.WithMessagef("unknown gesture kind %q", ev.Kind)
	}
}
