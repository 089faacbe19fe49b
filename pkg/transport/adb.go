package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
)

// Remote path the hierarchy dump is written to before being pulled.
const dumpPath = "/data/local/tmp/droidnav_dump.xml"

// Default per-command timeout when the caller's context has no deadline.
const commandTimeout = 30 * time.Second

// ADB implements Transport by shelling out to the adb binary.
type ADB struct {
	serial  string
	adbPath string
}

// Device describes one entry from `adb devices -l`.
type Device struct {
	Serial string
	State  string
	Model  string
}

// NewADB creates a transport for the given device serial. With an empty
// serial the single connected device is used; multiple connected devices
// without a serial is an error listing the candidates. adbPath overrides
// PATH lookup when non-empty.
func NewADB(serial, adbPath string) (*ADB, error) {
	if adbPath == "" {
		path, err := findADB()
		if err != nil {
			return nil, err
		}
		adbPath = path
	}

	if serial == "" {
		detected, err := detectSerial(adbPath)
		if err != nil {
			return nil, err
		}
		serial = detected
	}

	return &ADB{serial: serial, adbPath: adbPath}, nil
}

// Serial returns the device serial number.
func (d *ADB) Serial() string {
	return d.serial
}

// Command executes a raw adb command against the device.
func (d *ADB) Command(ctx context.Context, args ...string) (string, error) {
	cmdArgs := make([]string, 0, len(args)+2)
	if d.serial != "" {
		cmdArgs = append(cmdArgs, "-s", d.serial)
	}
	cmdArgs = append(cmdArgs, args...)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, commandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.adbPath, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return "", core.ErrTransport.
			WithMessagef("adb %s failed: %s", strings.Join(args, " "), errMsg).
			WithCause(err)
	}

	return stdout.String(), nil
}

// Shell executes a shell command on the device.
func (d *ADB) Shell(ctx context.Context, cmd string) (string, error) {
	return d.Command(ctx, "shell", cmd)
}

// DumpHierarchy dumps the accessibility tree via uiautomator and pulls
// the XML. The remote dump file is removed best-effort afterwards.
func (d *ADB) DumpHierarchy(ctx context.Context) (string, error) {
	if _, err := d.Shell(ctx, "uiautomator dump "+dumpPath); err != nil {
		return "", err
	}
	out, err := d.Command(ctx, "shell", "cat", dumpPath)
	if err != nil {
		return "", err
	}
	d.Shell(ctx, "rm "+dumpPath) //nolint:errcheck // cleanup only
	return out, nil
}

// Tap taps at the given coordinates.
func (d *ADB) Tap(ctx context.Context, x, y int) error {
	_, err := d.Shell(ctx, fmt.Sprintf("input tap %d %d", x, y))
	return err
}

// Swipe drags between two points over the given duration.
func (d *ADB) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	_, err := d.Shell(ctx, fmt.Sprintf("input swipe %d %d %d %d %d", x1, y1, x2, y2, durationMs))
	return err
}

// LongPress holds at a point, realized as a zero-distance swipe.
func (d *ADB) LongPress(ctx context.Context, x, y, durationMs int) error {
	return d.Swipe(ctx, x, y, x, y, durationMs)
}

// DoubleTap taps twice roughly 100ms apart, issued as one shell command
// so the gap does not depend on adb round-trips.
func (d *ADB) DoubleTap(ctx context.Context, x, y int) error {
	tap := fmt.Sprintf("input tap %d %d", x, y)
	_, err := d.Shell(ctx, tap+" && sleep 0.1 && "+tap)
	return err
}

// EnterText types text into the focused element.
func (d *ADB) EnterText(ctx context.Context, text string) error {
	_, err := d.Shell(ctx, fmt.Sprintf("input text '%s'", escapeText(text)))
	return err
}

// PressKey presses a key by name or numeric keycode.
func (d *ADB) PressKey(ctx context.Context, key string) error {
	code, err := KeyCode(key)
	if err != nil {
		return err
	}
	_, err = d.Shell(ctx, "input keyevent "+code)
	return err
}

// ScreenSize returns the device screen dimensions from `wm size`.
func (d *ADB) ScreenSize(ctx context.Context) (int, int, error) {
	out, err := d.Shell(ctx, "wm size")
	if err != nil {
		return 0, 0, err
	}
	w, h, ok := parseScreenSize(out)
	if !ok {
		return 0, 0, core.ErrTransport.WithMessagef("could not parse screen size from %q", strings.TrimSpace(out))
	}
	return w, h, nil
}

// Screenshot captures the screen as PNG into a local file. Raw capture
// only; no image analysis happens here.
func (d *ADB) Screenshot(ctx context.Context, localPath string) error {
	cmdArgs := []string{}
	if d.serial != "" {
		cmdArgs = append(cmdArgs, "-s", d.serial)
	}
	cmdArgs = append(cmdArgs, "exec-out", "screencap", "-p")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, commandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.adbPath, cmdArgs...)
	png, err := cmd.Output()
	if err != nil {
		return core.ErrTransport.WithMessage("screencap failed").WithCause(err)
	}
	if err := os.WriteFile(localPath, png, 0o644); err != nil {
		return core.ErrTransport.WithMessagef("could not write %s", localPath).WithCause(err)
	}
	return nil
}

// escapeText escapes text for `input text`: spaces become %s, quotes are
// backslash-escaped.
func escapeText(text string) string {
	escaped := strings.ReplaceAll(text, " ", "%s")
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return escaped
}

var screenSizeRe = regexp.MustCompile(`(\d+)x(\d+)`)

func parseScreenSize(out string) (int, int, bool) {
	m := screenSizeRe.FindStringSubmatch(out)
	if m == nil {
		return 0, 0, false
	}
	var w, h int
	fmt.Sscanf(m[1], "%d", &w) //nolint:errcheck // digits by regexp
	fmt.Sscanf(m[2], "%d", &h) //nolint:errcheck
	return w, h, true
}

// ListDevices returns the connected devices reported by adb.
func ListDevices(adbPath string) ([]Device, error) {
	if adbPath == "" {
		path, err := findADB()
		if err != nil {
			return nil, err
		}
		adbPath = path
	}
	cmd := exec.Command(adbPath, "devices", "-l")
	out, err := cmd.Output()
	if err != nil {
		return nil, core.ErrTransport.WithMessage("adb devices failed").WithCause(err)
	}
	return parseDevices(string(out)), nil
}

// parseDevices parses `adb devices -l` output.
func parseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		d := Device{Serial: parts[0], State: parts[1]}
		for _, part := range parts[2:] {
			if strings.HasPrefix(part, "model:") {
				d.Model = strings.TrimPrefix(part, "model:")
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// detectSerial picks the single connected device, or fails with the list
// of candidates when the choice is ambiguous.
func detectSerial(adbPath string) (string, error) {
	devices, err := ListDevices(adbPath)
	if err != nil {
		return "", err
	}

	var online []Device
	for _, d := range devices {
		if d.State == "device" {
			online = append(online, d)
		}
	}

	switch len(online) {
	case 0:
		return "", core.ErrTransport.WithMessage("no Android devices connected; run 'adb devices' to check")
	case 1:
		return online[0].Serial, nil
	default:
		serials := make([]string, len(online))
		for i, d := range online {
			serials[i] = d.Serial
		}
		return "", core.ErrTransport.
			WithMessage("multiple devices connected, specify a serial").
			WithDetails(map[string]interface{}{"devices": serials})
	}
}

// findADB locates the adb binary on PATH.
func findADB() (string, error) {
	if path, err := exec.LookPath("adb"); err == nil {
		return path, nil
	}
	return "", core.ErrTransport.WithMessage("adb not found in PATH; ensure Android SDK platform tools are installed")
}
