// Package transport executes primitive device commands for the resolver
// and gesture engines. The core never manages connections or device
// process lifecycles; everything here is plain command dispatch.
package transport

import "context"

// Transport is the narrow device contract consumed by the core.
// Every call is blocking I/O with its own bounded timeout; failures are
// surfaced as transport errors, never absorbed.
type Transport interface {
	// DumpHierarchy returns the raw UI hierarchy markup for the current
	// screen. A fresh dump is produced per call.
	DumpHierarchy(ctx context.Context) (string, error)

	// Tap taps at the given screen coordinates.
	Tap(ctx context.Context, x, y int) error

	// Swipe drags from (x1,y1) to (x2,y2) over durationMs milliseconds.
	Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error

	// LongPress holds at (x,y) for durationMs milliseconds.
	LongPress(ctx context.Context, x, y, durationMs int) error

	// DoubleTap taps twice in quick succession at (x,y).
	DoubleTap(ctx context.Context, x, y int) error

	// EnterText types text into whichever element currently has focus.
	EnterText(ctx context.Context, text string) error

	// PressKey presses a key by name (HOME, BACK, ...) or numeric keycode.
	PressKey(ctx context.Context, key string) error

	// ScreenSize returns the device screen width and height in pixels.
	ScreenSize(ctx context.Context) (int, int, error)
}
