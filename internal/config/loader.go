package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// LoadWithViper loads configuration through the given viper instance.
// Tests pass a fresh instance to stay isolated from global flag bindings.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// An explicit --config file is set with SetConfigFile before Load
	// and must exist; the search paths are optional.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (REQMERGE_*)
	v.SetEnvPrefix("REQMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("discovery.pattern", DefaultPattern)

	v.SetDefault("markers.interpreter", DefaultInterpreter)
	v.SetDefault("markers.probe", DefaultProbe)
	v.SetDefault("markers.probe_timeout", DefaultProbeTimeout)
	v.SetDefault("markers.python_version", DefaultPythonVersion)

	v.SetDefault("output.force", false)
}
