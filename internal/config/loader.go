package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (JAVASCRUB_*)
// 2. Config file (file if non-empty, else .javascrub.yaml in rootDir)
// 3. Default values
//
// A missing .javascrub.yaml is not an error; a missing explicit file is.
func Load(rootDir, file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(rootDir)
	}

	// Replace . with _ in env var names (e.g., JAVASCRUB_MARKERS_TOP_LEVEL)
	v.SetEnvPrefix("JAVASCRUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("markers.top_level")
	_ = v.BindEnv("output.empty_file")
	_ = v.BindEnv("output.max_blank_lines")
	_ = v.BindEnv("workers")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("markers.include", defaults.Markers.Include)
	v.SetDefault("markers.exclude", defaults.Markers.Exclude)
	v.SetDefault("markers.top_level", defaults.Markers.TopLevel)
	v.SetDefault("markers.strip", defaults.Markers.Strip)
	v.SetDefault("output.empty_file", defaults.Output.EmptyFile)
	v.SetDefault("output.max_blank_lines", defaults.Output.MaxBlankLines)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("workers", defaults.Workers)
}
