// Package cli provides the command-line interface for droidnav.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/droidnav/droidnav/pkg/config"
	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/logger"
	"github.com/droidnav/droidnav/pkg/transport"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "serial",
		Aliases: []string{"s"},
		Usage:   "Device serial to target (auto-detected if one device is connected)",
		EnvVars: []string{"DROIDNAV_SERIAL"},
	},
	&cli.StringFlag{
		Name:    "adb-path",
		Usage:   "Path to the adb binary (defaults to PATH lookup)",
		EnvVars: []string{"DROIDNAV_ADB"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (defaults to droidnav.yaml in the working directory)",
		EnvVars: []string{"DROIDNAV_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, text)",
		Value:   "json",
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Append logs to this file",
		EnvVars: []string{"DROIDNAV_LOG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Mirror logs to stderr",
		EnvVars: []string{"DROIDNAV_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "droidnav",
		Usage:   "Locate and drive Android UI elements over adb",
		Version: Version,
		Description: `droidnav resolves declarative element locators against the live
accessibility tree and drives taps, text input and gestures.

Examples:
  droidnav find --text Login --tap
  droidnav find --xpath "//android.widget.Button[@text='Submit'][1]" --tap --wait 5s
  droidnav gesture replay swipe.json --speed 2.0
  droidnav app launch com.example.app`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			return logger.Init(c.String("log-file"), c.Bool("verbose"))
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			findCommand,
			gestureCommand,
			appCommand,
			keyCommand,
			textCommand,
			hierarchyCommand,
			screenshotCommand,
			devicesCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file (if any) with global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if s := c.String("serial"); s != "" {
		cfg.Serial = s
	}
	if p := c.String("adb-path"); p != "" {
		cfg.ADBPath = p
	}
	return cfg, nil
}

// newTransport builds the ADB transport for the invocation.
func newTransport(c *cli.Context) (*transport.ADB, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	adb, err := transport.NewADB(cfg.Serial, cfg.ADBPath)
	if err != nil {
		return nil, nil, err
	}
	return adb, cfg, nil
}

// emit prints a result envelope in the selected format. Failures get a
// non-nil error so the process exits non-zero.
func emit(c *cli.Context, res core.Result) error {
	switch c.String("format") {
	case "text":
		emitText(res)
	default:
		fmt.Println(res.JSON())
	}
	if !res.Success {
		return cli.Exit("", 1)
	}
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided file
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func emitText(res core.Result) {
	if res.Success {
		fmt.Printf("ok: %v\n", res.Data)
		return
	}
	fmt.Printf("failed [%s]: %s\n", res.Error.Code, res.Error.Message)
	for k, v := range res.Error.Details {
		fmt.Printf("  %s: %v\n", k, v)
	}
}
