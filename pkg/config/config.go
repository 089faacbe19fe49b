// Package config handles workspace configuration for droidnav.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (droidnav.yaml).
// Zero values defer to the built-in defaults.
type Config struct {
	// Device settings
	Serial  string `yaml:"serial"`  // Target device serial (auto-detected if empty)
	ADBPath string `yaml:"adbPath"` // adb binary override

	// Resolution defaults
	WaitTimeoutMs  int `yaml:"waitTimeoutMs"`  // Wait window per predicate
	PollIntervalMs int `yaml:"pollIntervalMs"` // Delay between polls
	RetryCount     int `yaml:"retryCount"`     // Extra passes over the chain

	// Logging
	LogFile string `yaml:"logFile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PollIntervalMs: 500,
	}
}

// Load loads configuration from a file, on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for droidnav.yaml or droidnav.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"droidnav.yaml", "droidnav.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// No config file found, run on defaults.
	return Default(), nil
}
