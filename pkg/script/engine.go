// Package script evaluates JavaScript that builds gesture sequences.
//
// Scripts drive a virtual clock instead of real sleeps: wait(ms) advances
// the clock, and every gesture call is stamped with the current offset.
// The resulting sequence replays with the same relative timing a live
// recording would have.
package script

import (
	"github.com/dop251/goja"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/gesture"
	"github.com/droidnav/droidnav/pkg/logger"
)

// Engine wraps a goja runtime with the gesture-building API.
type Engine struct {
	runtime *goja.Runtime
	events  []gesture.Event
	clockMs int64
}

// New creates a script engine. screenWidth/screenHeight are exposed to
// scripts as screen.width and screen.height; zero is fine when no device
// is attached.
func New(screenWidth, screenHeight int) *Engine {
	e := &Engine{runtime: goja.New()}
	e.setupConsole()
	e.setupScreen(screenWidth, screenHeight)
	e.setupGestures()
	return e
}

// setupConsole routes console.log and friends into the process log.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(emit func(format string, v ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			emit("script: %v", args)
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(logger.Info))
	console.Set("warn", makeConsoleFunc(logger.Warn))
	console.Set("error", makeConsoleFunc(logger.Error))
	e.runtime.Set("console", console)
}

func (e *Engine) setupScreen(width, height int) {
	screen := e.runtime.NewObject()
	screen.Set("width", width)
	screen.Set("height", height)
	e.runtime.Set("screen", screen)
}

// setupGestures registers the builder API:
//
//	gestures.tap(x, y)
//	gestures.doubleTap(x, y)
//	gestures.longPress(x, y, durationMs?)
//	gestures.swipe(x1, y1, x2, y2, durationMs?)
//	gestures.wait(ms)
func (e *Engine) setupGestures() {
	arg := func(call goja.FunctionCall, i int) int {
		return int(call.Argument(i).ToInteger())
	}
	argOr := func(call goja.FunctionCall, i, def int) int {
		if goja.IsUndefined(call.Argument(i)) {
			return def
		}
		return arg(call, i)
	}
	record := func(ev gesture.Event) {
		ev.OffsetMs = e.clockMs
		e.events = append(e.events, ev)
	}

	gestures := e.runtime.NewObject()
	gestures.Set("tap", func(call goja.FunctionCall) goja.Value {
		record(gesture.Event{Kind: gesture.KindTap, X: arg(call, 0), Y: arg(call, 1)})
		return goja.Undefined()
	})
	gestures.Set("doubleTap", func(call goja.FunctionCall) goja.Value {
		record(gesture.Event{Kind: gesture.KindDoubleTap, X: arg(call, 0), Y: arg(call, 1)})
		return goja.Undefined()
	})
	gestures.Set("longPress", func(call goja.FunctionCall) goja.Value {
		record(gesture.Event{
			Kind: gesture.KindLongPress,
			X:    arg(call, 0), Y: arg(call, 1),
			DurationMs: argOr(call, 2, 1000),
		})
		return goja.Undefined()
	})
	gestures.Set("swipe", func(call goja.FunctionCall) goja.Value {
		record(gesture.Event{
			Kind: gesture.KindSwipe,
			X:    arg(call, 0), Y: arg(call, 1),
			X2: arg(call, 2), Y2: arg(call, 3),
			DurationMs: argOr(call, 4, gesture.DefaultSwipeDurationMs),
		})
		return goja.Undefined()
	})
	gestures.Set("wait", func(call goja.FunctionCall) goja.Value {
		ms := call.Argument(0).ToInteger()
		if ms > 0 {
			e.clockMs += ms
		}
		return goja.Undefined()
	})
	e.runtime.Set("gestures", gestures)
}

// Run executes the script and returns the sequence it built.
func (e *Engine) Run(src string) (gesture.Sequence, error) {
	e.events = nil
	e.clockMs = 0

	if _, err := e.runtime.RunString(src); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("gesture script failed").WithCause(err)
	}
	if len(e.events) == 0 {
		return nil, core.ErrInvalidConfig.WithMessage("gesture script produced no events")
	}

	seq := make(gesture.Sequence, len(e.events))
	copy(seq, e.events)
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

// EvalString evaluates a JS expression and returns its string value.
// Used for computed locator values.
func (e *Engine) EvalString(expr string) (string, error) {
	v, err := e.runtime.RunString(expr)
	if err != nil {
		return "", core.ErrInvalidConfig.WithMessage("expression failed").WithCause(err)
	}
	return v.String(), nil
}
