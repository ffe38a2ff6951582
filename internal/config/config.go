package config

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	Manifest  ManifestConfig  `mapstructure:"manifest" yaml:"manifest"`
	Markers   MarkersConfig   `mapstructure:"markers" yaml:"markers"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DiscoveryConfig controls how manifest files are found
type DiscoveryConfig struct {
	// Pattern is the base-name glob every manifest must match
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
}

// ManifestConfig controls how requirement files are read
type ManifestConfig struct {
	// EnvFiles are dotenv files whose variables feed ${VAR} expansion;
	// later files win, and the process environment wins over all of them
	EnvFiles []string `mapstructure:"env_files" yaml:"env_files"`
}

// MarkersConfig controls the environment that markers are evaluated against
type MarkersConfig struct {
	Interpreter   string            `mapstructure:"interpreter" yaml:"interpreter"`
	Probe         bool              `mapstructure:"probe" yaml:"probe"`
	ProbeTimeout  time.Duration     `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	PythonVersion string            `mapstructure:"python_version" yaml:"python_version"`
	Environment   map[string]string `mapstructure:"environment" yaml:"environment"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Force bool `mapstructure:"force" yaml:"force"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	} else if !utils.IsValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.Format != "pretty" && c.Logging.Format != "json" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Discovery.Pattern == "" {
		c.Discovery.Pattern = DefaultPattern
	} else if !doublestar.ValidatePattern(c.Discovery.Pattern) {
		return fmt.Errorf("invalid discovery.pattern: %q", c.Discovery.Pattern)
	}
	if c.Markers.Interpreter == "" {
		c.Markers.Interpreter = DefaultInterpreter
	}
	if c.Markers.ProbeTimeout < 100*time.Millisecond {
		c.Markers.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Markers.PythonVersion == "" {
		c.Markers.PythonVersion = DefaultPythonVersion
	}
	return nil
}
