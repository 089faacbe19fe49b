package transport

import (
	"strconv"
	"strings"

	"github.com/droidnav/droidnav/pkg/core"
)

// keyCodes maps common key names to Android keycodes.
var keyCodes = map[string]int{
	"HOME":        3,
	"BACK":        4,
	"MENU":        82,
	"ENTER":       66,
	"TAB":         61,
	"ESCAPE":      111,
	"VOLUME_UP":   24,
	"VOLUME_DOWN": 25,
	"POWER":       26,
	"CAMERA":      27,
	"DELETE":      67,
	"SEARCH":      84,
}

// KeyCode resolves a key name or numeric keycode to the string passed to
// `input keyevent`. Unknown names are rejected rather than sent blind.
func KeyCode(key string) (string, error) {
	if code, ok := keyCodes[strings.ToUpper(key)]; ok {
		return strconv.Itoa(code), nil
	}
	if _, err := strconv.Atoi(key); err == nil {
		return key, nil
	}
	return "", core.ErrInvalidConfig.WithMessagef("unknown key %q", key)
}

// KeyNames returns the supported key names, for help output.
func KeyNames() []string {
	names := make([]string, 0, len(keyCodes))
	for name := range keyCodes {
		names = append(names, name)
	}
	return names
}
