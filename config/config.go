package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/parble/parble-go/export"
	"github.com/parble/parble-go/filter"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "PARBLE"

// Load loads the configuration from file and PARBLE_* environment variables.
// An explicit configPath must exist; otherwise a missing file is not an error.
// The url and api_key are not required here, the client reports them.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("parble")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check user config directory
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "parble"))
		}

		// Check /etc
		v.AddConfigPath("/etc/parble/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Connection keys default to
// empty so AutomaticEnv picks them up on Unmarshal. They are kept as raw text
// and validated by the client settings, which report every invalid one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("default_timeout", "")
	v.SetDefault("inbox_id", "")

	// Output defaults
	v.SetDefault("output.format", string(export.FormatJSON))
	v.SetDefault("output.spinner", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if _, err := export.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("invalid output.format: %w", err)
	}

	for name, expression := range cfg.Filters {
		if _, err := filter.Compile(expression); err != nil {
			return fmt.Errorf("invalid filter %q: %w", name, err)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ResolveFilter returns the expression of a named filter, or value itself
// when no filter has that name.
func (c *Config) ResolveFilter(value string) string {
	if expression, ok := c.Filters[value]; ok {
		return expression
	}
	return value
}
