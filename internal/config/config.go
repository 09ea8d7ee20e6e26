// Package config loads and validates javascrub configuration.
package config

import (
	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/scrub"
)

// FileName is the configuration file looked up in the input root.
const FileName = ".javascrub.yaml"

// Config represents the complete javascrub configuration.
// It can be loaded from .javascrub.yaml with environment variable overrides.
type Config struct {
	Markers MarkersConfig `yaml:"markers" mapstructure:"markers"`
	Rename  []RenameRule  `yaml:"rename" mapstructure:"rename"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Workers int           `yaml:"workers" mapstructure:"workers"` // 0 means GOMAXPROCS
}

// MarkersConfig names the annotations that drive classification.
type MarkersConfig struct {
	Include  []string `yaml:"include" mapstructure:"include"`
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`
	TopLevel string   `yaml:"top_level" mapstructure:"top_level"` // "auto", "include" or "exclude"
	Strip    []string `yaml:"strip" mapstructure:"strip"`         // annotations removed from surviving code
}

// RenameRule maps a source package prefix to a target prefix.
type RenameRule struct {
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	EmptyFile     string `yaml:"empty_file" mapstructure:"empty_file"`           // "keep", "delete" or "error"
	MaxBlankLines int    `yaml:"max_blank_lines" mapstructure:"max_blank_lines"` // 0 leaves blank lines alone
}

// PathsConfig selects input files.
type PathsConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Markers: MarkersConfig{
			TopLevel: string(classify.Auto),
		},
		Output: OutputConfig{
			EmptyFile: string(scrub.EmptyFileKeep),
		},
	}
}

// ScrubOptions converts a validated configuration to scrubber options.
func (c *Config) ScrubOptions() scrub.Options {
	rules := make([]model.RenameRule, len(c.Rename))
	for i, r := range c.Rename {
		rules[i] = model.RenameRule{From: r.From, To: r.To}
	}
	return scrub.Options{
		Include:          c.Markers.Include,
		Exclude:          c.Markers.Exclude,
		TopLevel:         classify.TopLevelPolicy(c.Markers.TopLevel),
		StripAnnotations: c.Markers.Strip,
		Renames:          rules,
		EmptyFile:        scrub.EmptyFileAction(c.Output.EmptyFile),
		MaxBlankLines:    c.Output.MaxBlankLines,
	}
}
