package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/droidnav/droidnav/pkg/app"
	"github.com/droidnav/droidnav/pkg/core"
)

var appCommand = &cli.Command{
	Name:  "app",
	Usage: "Install, launch and stop apps",
	Subcommands: []*cli.Command{
		{
			Name:      "install",
			Usage:     "Install an APK (replacing, with permissions granted)",
			ArgsUsage: "FILE.apk",
			Action: appAction(func(c *cli.Context, m *app.Manager) (interface{}, error) {
				if c.NArg() != 1 {
					return nil, core.ErrInvalidConfig.WithMessage("expected an APK path")
				}
				apk := c.Args().First()
				return map[string]string{"installed": apk}, m.Install(c.Context, apk)
			}),
		},
		{
			Name:      "uninstall",
			Usage:     "Remove a package",
			ArgsUsage: "PACKAGE",
			Action: appAction(func(c *cli.Context, m *app.Manager) (interface{}, error) {
				if c.NArg() != 1 {
					return nil, core.ErrInvalidConfig.WithMessage("expected a package name")
				}
				pkg := c.Args().First()
				return map[string]string{"uninstalled": pkg}, m.Uninstall(c.Context, pkg)
			}),
		},
		{
			Name:      "launch",
			Usage:     "Launch an app by package name",
			ArgsUsage: "PACKAGE",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "activity", Usage: "Explicit activity to start"},
			},
			Action: appAction(func(c *cli.Context, m *app.Manager) (interface{}, error) {
				if c.NArg() != 1 {
					return nil, core.ErrInvalidConfig.WithMessage("expected a package name")
				}
				pkg := c.Args().First()
				return map[string]string{"launched": pkg}, m.Launch(c.Context, pkg, c.String("activity"))
			}),
		},
		{
			Name:      "stop",
			Usage:     "Force-stop an app",
			ArgsUsage: "PACKAGE",
			Action: appAction(func(c *cli.Context, m *app.Manager) (interface{}, error) {
				if c.NArg() != 1 {
					return nil, core.ErrInvalidConfig.WithMessage("expected a package name")
				}
				pkg := c.Args().First()
				return map[string]string{"stopped": pkg}, m.Stop(c.Context, pkg)
			}),
		},
		{
			Name:  "list",
			Usage: "List installed packages",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "third-party", Usage: "Only third-party packages"},
				&cli.BoolFlag{Name: "system", Usage: "Only system packages"},
			},
			Action: appAction(func(c *cli.Context, m *app.Manager) (interface{}, error) {
				filter := app.ListAll
				if c.Bool("third-party") {
					filter = app.ListThirdParty
				} else if c.Bool("system") {
					filter = app.ListSystem
				}
				packages, err := m.List(c.Context, filter)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"count":    len(packages),
					"packages": packages,
				}, nil
			}),
		},
	},
}

// appAction wires the transport and app manager into a subcommand.
func appAction(run func(c *cli.Context, m *app.Manager) (interface{}, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		adb, _, err := newTransport(c)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		data, err := run(c, app.NewManager(adb))
		if err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(data))
	}
}
