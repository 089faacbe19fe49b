package cli

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/gesture"
	"github.com/droidnav/droidnav/pkg/script"
)

var gestureCommand = &cli.Command{
	Name:  "gesture",
	Usage: "Replay recorded gestures or dispatch simple ones",
	Subcommands: []*cli.Command{
		gestureReplayCommand,
		gestureScriptCommand,
		gestureSwipeCommand,
		gestureTapCommand,
		gestureDoubleTapCommand,
		gestureLongPressCommand,
	},
}

var gestureReplayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay a recorded gesture sequence from a JSON file",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "speed", Usage: "Playback speed multiplier", Value: 1.0},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("usage: droidnav gesture replay FILE", 1)
		}
		seq, err := gesture.Load(c.Args().First())
		if err != nil {
			return emit(c, core.Fail(err))
		}

		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		if err := gesture.NewReplayer(adb).Replay(c.Context, seq, c.Float64("speed")); err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]interface{}{
			"eventsReplayed": len(seq),
			"duration":       seq.Duration().String(),
			"speed":          c.Float64("speed"),
		}))
	},
}

var gestureScriptCommand = &cli.Command{
	Name:      "script",
	Usage:     "Build a gesture sequence from a JavaScript file",
	ArgsUsage: "FILE.js",
	Description: `The script drives a virtual clock:

  gestures.tap(540, 960);
  gestures.wait(500);
  gestures.swipe(540, 1500, 540, 500, 300);

Save the result with --save, or replay it immediately with --replay.`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "save", Usage: "Write the sequence to this JSON file"},
		&cli.BoolFlag{Name: "replay", Usage: "Replay the sequence after building it"},
		&cli.Float64Flag{Name: "speed", Usage: "Playback speed multiplier", Value: 1.0},
	},
	Action: runGestureScript,
}

func runGestureScript(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: droidnav gesture script FILE.js", 1)
	}
	src, err := readFile(c.Args().First())
	if err != nil {
		return emit(c, core.Fail(err))
	}

	// Screen dimensions are only needed when a device is reachable;
	// scripts that never touch screen.* run fine without one.
	width, height := 0, 0
	adb, _, adbErr := newTransport(c)
	if adbErr == nil {
		if w, h, err := adb.ScreenSize(c.Context); err == nil {
			width, height = w, h
		}
	}

	seq, err := script.New(width, height).Run(src)
	if err != nil {
		return emit(c, core.Fail(err))
	}

	if path := c.String("save"); path != "" {
		if err := seq.Save(path); err != nil {
			return emit(c, core.Fail(err))
		}
	}
	if c.Bool("replay") {
		if adbErr != nil {
			return emit(c, core.Fail(adbErr))
		}
		if err := gesture.NewReplayer(adb).Replay(c.Context, seq, c.Float64("speed")); err != nil {
			return emit(c, core.Fail(err))
		}
	}
	return emit(c, core.OK(map[string]interface{}{
		"eventCount": len(seq),
		"duration":   seq.Duration().String(),
		"saved":      c.String("save"),
		"replayed":   c.Bool("replay"),
	}))
}

var gestureSwipeCommand = &cli.Command{
	Name:      "swipe",
	Usage:     "Swipe across the screen center",
	ArgsUsage: "up|down|left|right",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("usage: droidnav gesture swipe up|down|left|right", 1)
		}
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		w, h, err := adb.ScreenSize(c.Context)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		ev, err := gesture.Directional(gesture.Direction(c.Args().First()), w, h)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		if err := adb.Swipe(c.Context, ev.X, ev.Y, ev.X2, ev.Y2, ev.DurationMs); err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(ev))
	},
}

var gestureTapCommand = &cli.Command{
	Name:      "tap",
	Usage:     "Tap at coordinates",
	ArgsUsage: "X Y",
	Action: func(c *cli.Context) error {
		return dispatchPoint(c, func(x, y int) (gesture.Event, error) {
			adb, _, err := newTransport(c)
			if err != nil {
				return gesture.Event{}, err
			}
			return gesture.Event{Kind: gesture.KindTap, X: x, Y: y}, adb.Tap(c.Context, x, y)
		})
	},
}

var gestureDoubleTapCommand = &cli.Command{
	Name:      "double-tap",
	Usage:     "Double tap at coordinates",
	ArgsUsage: "X Y",
	Action: func(c *cli.Context) error {
		return dispatchPoint(c, func(x, y int) (gesture.Event, error) {
			adb, _, err := newTransport(c)
			if err != nil {
				return gesture.Event{}, err
			}
			return gesture.Event{Kind: gesture.KindDoubleTap, X: x, Y: y}, adb.DoubleTap(c.Context, x, y)
		})
	},
}

var gestureLongPressCommand = &cli.Command{
	Name:      "long-press",
	Usage:     "Long-press at coordinates",
	ArgsUsage: "X Y",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "duration", Usage: "Hold duration in milliseconds", Value: 1000},
	},
	Action: func(c *cli.Context) error {
		return dispatchPoint(c, func(x, y int) (gesture.Event, error) {
			adb, _, err := newTransport(c)
			if err != nil {
				return gesture.Event{}, err
			}
			ms := c.Int("duration")
			ev := gesture.Event{Kind: gesture.KindLongPress, X: x, Y: y, DurationMs: ms}
			return ev, adb.LongPress(c.Context, x, y, ms)
		})
	},
}

// dispatchPoint parses X Y args and runs a point gesture.
func dispatchPoint(c *cli.Context, run func(x, y int) (gesture.Event, error)) error {
	if c.NArg() != 2 {
		return cli.Exit("expected X and Y coordinates", 1)
	}
	x, errX := strconv.Atoi(c.Args().Get(0))
	y, errY := strconv.Atoi(c.Args().Get(1))
	if errX != nil || errY != nil {
		return emit(c, core.Fail(core.ErrInvalidConfig.WithMessage("coordinates must be integers")))
	}
	ev, err := run(x, y)
	if err != nil {
		return emit(c, core.Fail(err))
	}
	return emit(c, core.OK(ev))
}
