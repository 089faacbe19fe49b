package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/hierarchy"
	"github.com/droidnav/droidnav/pkg/transport"
)

var keyCommand = &cli.Command{
	Name:      "key",
	Usage:     "Press a hardware or navigation key",
	ArgsUsage: "KEY",
	Description: "KEY is a name (HOME, BACK, ENTER, ...) or a numeric Android keycode.\n" +
		"Known names: " + joinKeyNames(),
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return emit(c, core.Fail(core.ErrInvalidConfig.WithMessage("expected a key name or keycode")))
		}
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		key := c.Args().First()
		if err := adb.PressKey(c.Context, key); err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]string{"pressed": key}))
	},
}

var textCommand = &cli.Command{
	Name:      "text",
	Usage:     "Type text into the focused field",
	ArgsUsage: "TEXT",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return emit(c, core.Fail(core.ErrInvalidConfig.WithMessage("expected a text argument")))
		}
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		text := c.Args().First()
		if err := adb.EnterText(c.Context, text); err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]string{"entered": text}))
	},
}

var hierarchyCommand = &cli.Command{
	Name:  "hierarchy",
	Usage: "Dump the current accessibility tree",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "raw", Usage: "Print the raw XML dump instead of parsed elements"},
	},
	Action: func(c *cli.Context) error {
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		raw, err := adb.DumpHierarchy(c.Context)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		if c.Bool("raw") {
			fmt.Println(raw)
			return nil
		}
		snap, err := hierarchy.Parse(raw)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		elements := snap.Flatten()
		infos := make([]core.ElementInfo, 0, len(elements))
		for _, el := range elements {
			infos = append(infos, el.Info())
		}
		return emit(c, core.OK(map[string]interface{}{
			"count":    len(infos),
			"elements": infos,
		}))
	},
}

var screenshotCommand = &cli.Command{
	Name:  "screenshot",
	Usage: "Capture the screen to a PNG file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "screenshot.png",
			Usage:   "Destination file",
		},
	},
	Action: func(c *cli.Context) error {
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		out := c.String("output")
		if err := adb.Screenshot(c.Context, out); err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]string{"saved": out}))
	},
}

var devicesCommand = &cli.Command{
	Name:  "devices",
	Usage: "List connected devices",
	Action: func(c *cli.Context) error {
		devices, err := transport.ListDevices(c.String("adb-path"))
		if err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]interface{}{
			"count":   len(devices),
			"devices": devices,
		}))
	},
}

func joinKeyNames() string {
	return strings.Join(transport.KeyNames(), ", ")
}
