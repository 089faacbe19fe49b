package gesture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
)

func TestSequenceSaveLoad(t *testing.T) {
	seq := Sequence{
		{Kind: KindTap, X: 100, Y: 200, OffsetMs: 0},
		{Kind: KindLongPress, X: 100, Y: 200, DurationMs: 1500, OffsetMs: 800},
		{Kind: KindSwipe, X: 0, Y: 500, X2: 0, Y2: 100, DurationMs: 300, OffsetMs: 2000},
	}

	path := filepath.Join(t.TempDir(), "recording.json")
	if err := seq.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != len(seq) {
		t.Fatalf("loaded %d events, want %d", len(loaded), len(seq))
	}
	for i := range seq {
		if loaded[i] != seq[i] {
			t.Errorf("event %d = %+v, want %+v", i, loaded[i], seq[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"not json", write("bad.json", "not a recording")},
		{"empty list", write("empty.json", "[]")},
		{"unknown kind", write("kind.json", `[{"kind":"pinch","x":1,"y":1,"offsetMs":0}]`)},
		{"negative offset", write("offset.json", `[{"kind":"tap","x":1,"y":1,"offsetMs":-5}]`)},
		{"unordered", write("order.json", `[{"kind":"tap","offsetMs":100},{"kind":"tap","offsetMs":50}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSequenceDuration(t *testing.T) {
	seq := Sequence{
		{Kind: KindTap, OffsetMs: 0},
		{Kind: KindTap, OffsetMs: 2500},
	}
	if got := seq.Duration(); got != 2500*time.Millisecond {
		t.Errorf("Duration() = %v, want 2.5s", got)
	}
	if got := (Sequence{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}

func TestRecorderOffsets(t *testing.T) {
	now := time.Unix(100, 0)
	r := NewRecorderWithClock(func() time.Time { return now })

	r.Tap(10, 20)
	now = now.Add(250 * time.Millisecond)
	r.DoubleTap(30, 40)
	now = now.Add(750 * time.Millisecond)
	r.Swipe(0, 0, 100, 100, 300)

	seq := r.Sequence()
	if len(seq) != 3 {
		t.Fatalf("recorded %d events, want 3", len(seq))
	}

	wantOffsets := []int64{0, 250, 1000}
	for i, want := range wantOffsets {
		if seq[i].OffsetMs != want {
			t.Errorf("event %d offset = %d, want %d", i, seq[i].OffsetMs, want)
		}
	}
	if err := seq.Validate(); err != nil {
		t.Errorf("recorded sequence should validate: %v", err)
	}
}

func TestRecorderSequenceIsACopy(t *testing.T) {
	r := NewRecorder()
	r.Tap(1, 1)

	seq := r.Sequence()
	seq[0].X = 999

	if r.Sequence()[0].X != 1 {
		t.Error("mutating a returned sequence must not affect the recorder")
	}
}

func TestDirectional(t *testing.T) {
	// 1080x1920 portrait: swipes run through (540,960), one third of
	// the width (360) out in each direction.
	tests := []struct {
		dir          Direction
		x, y, x2, y2 int
	}{
		{DirectionUp, 540, 1320, 540, 600},
		{DirectionDown, 540, 600, 540, 1320},
		{DirectionLeft, 900, 960, 180, 960},
		{DirectionRight, 180, 960, 900, 960},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			ev, err := Directional(tt.dir, 1080, 1920)
			if err != nil {
				t.Fatalf("Directional() error: %v", err)
			}
			if ev.Kind != KindSwipe || ev.DurationMs != DefaultSwipeDurationMs {
				t.Errorf("event = %+v", ev)
			}
			if ev.X != tt.x || ev.Y != tt.y || ev.X2 != tt.x2 || ev.Y2 != tt.y2 {
				t.Errorf("swipe (%d,%d)->(%d,%d), want (%d,%d)->(%d,%d)",
					ev.X, ev.Y, ev.X2, ev.Y2, tt.x, tt.y, tt.x2, tt.y2)
			}
		})
	}

	if _, err := Directional("diagonal", 1080, 1920); err == nil {
		t.Error("unknown direction should fail")
	}
}
