// Package app manages application lifecycles on the device: install,
// uninstall, launch, stop, list. Pure command dispatch, no state machine.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/droidnav/droidnav/pkg/core"
)

// Runner is the slice of the ADB transport this package needs.
type Runner interface {
	Shell(ctx context.Context, cmd string) (string, error)
	Command(ctx context.Context, args ...string) (string, error)
}

// Manager dispatches app lifecycle commands.
type Manager struct {
	runner Runner
}

// NewManager creates a Manager on top of an ADB runner.
func NewManager(r Runner) *Manager {
	return &Manager{runner: r}
}

// Install installs an APK, replacing an existing install and granting
// runtime permissions.
func (m *Manager) Install(ctx context.Context, apkPath string) error {
	_, err := m.runner.Command(ctx, "install", "-r", "-g", apkPath)
	return err
}

// Uninstall removes a package from the device.
func (m *Manager) Uninstall(ctx context.Context, pkg string) error {
	_, err := m.runner.Command(ctx, "uninstall", pkg)
	return err
}

// Launch starts an app. With an activity it uses `am start -W` on the
// explicit component; otherwise monkey fires the launcher intent, which
// needs no knowledge of the app's activities.
func (m *Manager) Launch(ctx context.Context, pkg, activity string) error {
	if !m.IsInstalled(ctx, pkg) {
		return core.NewAutomationError(core.ErrCategoryConfig, "app_not_installed",
			fmt.Sprintf("package %s is not installed", pkg))
	}

	var cmd string
	if activity != "" {
		component := pkg + "/" + activity
		cmd = "am start -W -n " + component
	} else {
		cmd = fmt.Sprintf("monkey -p %s -c android.intent.category.LAUNCHER 1", pkg)
	}
	out, err := m.runner.Shell(ctx, cmd)
	if err != nil {
		return err
	}
	if strings.Contains(out, "Error") || strings.Contains(out, "No activities found") {
		return core.ErrTransport.WithMessagef("launch of %s failed: %s", pkg, strings.TrimSpace(out))
	}
	return nil
}

// Stop force-stops a running app.
func (m *Manager) Stop(ctx context.Context, pkg string) error {
	_, err := m.runner.Shell(ctx, "am force-stop "+pkg)
	return err
}

// IsInstalled checks whether a package is installed.
func (m *Manager) IsInstalled(ctx context.Context, pkg string) bool {
	out, err := m.runner.Shell(ctx, "pm list packages "+pkg)
	if err != nil {
		return false
	}
	return strings.Contains(out, "package:"+pkg)
}

// ListFilter selects which packages List returns.
type ListFilter string

// List filters.
const (
	ListAll        ListFilter = ""
	ListThirdParty ListFilter = "-3"
	ListSystem     ListFilter = "-s"
)

// List returns installed package names, optionally filtered to
// third-party or system packages.
func (m *Manager) List(ctx context.Context, filter ListFilter) ([]string, error) {
	cmd := "pm list packages"
	if filter != ListAll {
		cmd += " " + string(filter)
	}
	out, err := m.runner.Shell(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "package:"); ok && name != "" {
			packages = append(packages, name)
		}
	}
	return packages, nil
}
