package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds deployctl configuration
type Settings struct {
	Log    LogSettings    `mapstructure:"log"`
	Store  StoreSettings  `mapstructure:"store"`
	Output OutputSettings `mapstructure:"output"`
}

// LogSettings holds logging configuration
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "console" or "text"
}

// StoreSettings holds options store configuration
type StoreSettings struct {
	DSN string `mapstructure:"dsn"`
}

// OutputSettings controls how options are printed
type OutputSettings struct {
	Format string `mapstructure:"format"` // "json" or "yaml"
}

// LoadSettings loads settings from an optional file and DEPLOYCTL_* environment variables
func LoadSettings(configPath string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.dsn", "./deployctl.db")
	v.SetDefault("output.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	v.SetEnvPrefix("DEPLOYCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validateSettings(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func validateSettings(settings *Settings) error {
	switch settings.Log.Format {
	case "json", "console", "text":
	default:
		return fmt.Errorf("invalid log format: %s", settings.Log.Format)
	}
	switch settings.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %s", settings.Output.Format)
	}
	if settings.Store.DSN == "" {
		return fmt.Errorf("store dsn cannot be empty")
	}
	return nil
}
