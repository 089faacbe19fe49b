package gesture

import (
	"sync"
	"time"
)

// Recorder captures touch events with offsets relative to the first
// event. Events may come from a live capture loop or from scripted calls;
// either way the resulting Sequence is a value, detached from the
// recorder.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithClock creates a recorder with an injected clock.
// This should only be used in tests.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// offset stamps the current event. The first event defines time zero.
func (r *Recorder) offset() int64 {
	t := r.now()
	if len(r.events) == 0 {
		r.start = t
		return 0
	}
	return t.Sub(r.start).Milliseconds()
}

func (r *Recorder) append(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.OffsetMs = r.offset()
	r.events = append(r.events, ev)
}

// Tap records a tap at (x,y).
func (r *Recorder) Tap(x, y int) {
	r.append(Event{Kind: KindTap, X: x, Y: y})
}

// Swipe records a swipe from (x,y) to (x2,y2).
func (r *Recorder) Swipe(x, y, x2, y2, durationMs int) {
	r.append(Event{Kind: KindSwipe, X: x, Y: y, X2: x2, Y2: y2, DurationMs: durationMs})
}

// LongPress records a hold at (x,y).
func (r *Recorder) LongPress(x, y, durationMs int) {
	r.append(Event{Kind: KindLongPress, X: x, Y: y, DurationMs: durationMs})
}

// DoubleTap records a double tap at (x,y).
func (r *Recorder) DoubleTap(x, y int) {
	r.append(Event{Kind: KindDoubleTap, X: x, Y: y})
}

// Len returns the number of events recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Sequence returns a copy of the recording.
func (r *Recorder) Sequence() Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(Sequence, len(r.events))
	copy(out, r.events)
	return out
}
