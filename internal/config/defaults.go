package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"

	// Discovery defaults
	DefaultPattern = "requirements*.txt"

	// Marker environment defaults
	DefaultInterpreter   = "python3"
	DefaultProbe         = true
	DefaultProbeTimeout  = 5 * time.Second
	DefaultPythonVersion = "3.12"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reqmerge"
	}
	return filepath.Join(home, ".reqmerge")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Discovery: DiscoveryConfig{
			Pattern: DefaultPattern,
		},
		Markers: MarkersConfig{
			Interpreter:   DefaultInterpreter,
			Probe:         DefaultProbe,
			ProbeTimeout:  DefaultProbeTimeout,
			PythonVersion: DefaultPythonVersion,
		},
	}
}
