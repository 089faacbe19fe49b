package script

import (
	"errors"
	"testing"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/gesture"
)

func TestRunBuildsSequence(t *testing.T) {
	e := New(1080, 1920)

	seq, err := e.Run(`
		gestures.tap(100, 200);
		gestures.wait(500);
		gestures.swipe(0, 960, 1080, 960);
		gestures.wait(250);
		gestures.longPress(540, 960);
	`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(seq) != 3 {
		t.Fatalf("events = %d, want 3", len(seq))
	}

	if seq[0].Kind != gesture.KindTap || seq[0].OffsetMs != 0 {
		t.Errorf("event 0 = %+v", seq[0])
	}
	if seq[1].Kind != gesture.KindSwipe || seq[1].OffsetMs != 500 {
		t.Errorf("event 1 = %+v", seq[1])
	}
	if seq[1].DurationMs != gesture.DefaultSwipeDurationMs {
		t.Errorf("swipe duration = %d, want default", seq[1].DurationMs)
	}
	if seq[2].Kind != gesture.KindLongPress || seq[2].OffsetMs != 750 {
		t.Errorf("event 2 = %+v", seq[2])
	}
	if seq[2].DurationMs != 1000 {
		t.Errorf("long press duration = %d, want 1000", seq[2].DurationMs)
	}
}

func TestRunUsesScreenDimensions(t *testing.T) {
	e := New(1080, 1920)

	seq, err := e.Run(`gestures.tap(screen.width / 2, screen.height / 2);`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if seq[0].X != 540 || seq[0].Y != 960 {
		t.Errorf("tap = (%d,%d), want screen center", seq[0].X, seq[0].Y)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "gestures.tap(1, 2"},
		{"runtime error", "undefinedFunction();"},
		{"no events", "var x = 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(0, 0).Run(tt.src)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("Run() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunResetsBetweenCalls(t *testing.T) {
	e := New(0, 0)

	if _, err := e.Run(`gestures.wait(1000); gestures.tap(1, 1);`); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}

	seq, err := e.Run(`gestures.tap(2, 2);`)
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if len(seq) != 1 || seq[0].OffsetMs != 0 {
		t.Errorf("second run should start at time zero, got %+v", seq)
	}
}

func TestEvalString(t *testing.T) {
	e := New(0, 0)

	got, err := e.EvalString(`"user_" + (2 + 3)`)
	if err != nil {
		t.Fatalf("EvalString() error: %v", err)
	}
	if got != "user_5" {
		t.Errorf("EvalString() = %q, want user_5", got)
	}

	if _, err := e.EvalString("nope("); err == nil {
		t.Error("EvalString should fail on a syntax error")
	}
}
