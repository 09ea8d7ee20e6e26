package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/scrub"
)

const sampleConfig = `markers:
  include: [Include]
  exclude: [Exclude, com.google.common.annotations.GwtIncompatible]
  top_level: exclude
  strip: [SmallTest]
rename:
  - from: com.google.example
    to: com.othercompany.example
output:
  empty_file: error
  max_blank_lines: 2
paths:
  ignore: ["**/generated/**"]
workers: 3
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "auto", cfg.Markers.TopLevel)
	assert.Equal(t, "keep", cfg.Output.EmptyFile)
	assert.Zero(t, cfg.Output.MaxBlankLines)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default().Markers.TopLevel, cfg.Markers.TopLevel)
	assert.Equal(t, Default().Output.EmptyFile, cfg.Output.EmptyFile)
	assert.Empty(t, cfg.Rename)
}

func TestLoadFromRoot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, FileName, sampleConfig)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Include"}, cfg.Markers.Include)
	assert.Equal(t, []string{"Exclude", "com.google.common.annotations.GwtIncompatible"}, cfg.Markers.Exclude)
	assert.Equal(t, "exclude", cfg.Markers.TopLevel)
	assert.Equal(t, []string{"SmallTest"}, cfg.Markers.Strip)
	assert.Equal(t, []RenameRule{{From: "com.google.example", To: "com.othercompany.example"}}, cfg.Rename)
	assert.Equal(t, "error", cfg.Output.EmptyFile)
	assert.Equal(t, 2, cfg.Output.MaxBlankLines)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Paths.Ignore)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeConfig(t, dir, "scrub.yaml", "markers:\n  exclude: [Internal]\n")

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Internal"}, cfg.Markers.Exclude)
	assert.Equal(t, "auto", cfg.Markers.TopLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, FileName, "markers: [unclosed\n")
	_, err := Load(dir, "")
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, FileName, sampleConfig)
	t.Setenv("JAVASCRUB_MARKERS_TOP_LEVEL", "include")
	t.Setenv("JAVASCRUB_OUTPUT_EMPTY_FILE", "delete")
	t.Setenv("JAVASCRUB_OUTPUT_MAX_BLANK_LINES", "1")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "include", cfg.Markers.TopLevel)
	assert.Equal(t, "delete", cfg.Output.EmptyFile)
	assert.Equal(t, 1, cfg.Output.MaxBlankLines)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, FileName, "markers:\n  top_level: sometimes\n")
	_, err := Load(dir, "")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"policy", func(c *Config) { c.Markers.TopLevel = "maybe" }, ErrInvalidPolicy},
		{"conflict", func(c *Config) {
			c.Markers.Include = []string{"Keep"}
			c.Markers.Exclude = []string{"Keep"}
		}, ErrConflictingMarker},
		{"rule", func(c *Config) { c.Rename = []RenameRule{{From: "com..a", To: "b"}} }, ErrInvalidRule},
		{"empty file", func(c *Config) { c.Output.EmptyFile = "shred" }, ErrInvalidEmptyFile},
		{"blank lines", func(c *Config) { c.Output.MaxBlankLines = -1 }, ErrInvalidBlankLines},
		{"pattern", func(c *Config) { c.Paths.Ignore = []string{"[oops"} }, ErrInvalidPattern},
		{"workers", func(c *Config) { c.Workers = -1 }, ErrInvalidWorkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Markers.TopLevel = "maybe"
	cfg.Workers = -2
	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestScrubOptions(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Markers.Exclude = []string{"Internal"}
	cfg.Markers.TopLevel = "exclude"
	cfg.Rename = []RenameRule{{From: "a.b", To: "c.d"}}
	cfg.Output.MaxBlankLines = 2

	opts := cfg.ScrubOptions()
	assert.Equal(t, classify.Whitelist, opts.TopLevel)
	assert.Equal(t, scrub.EmptyFileKeep, opts.EmptyFile)
	assert.Equal(t, 2, opts.MaxBlankLines)
	assert.Equal(t, []model.RenameRule{{From: "a.b", To: "c.d"}}, opts.Renames)

	_, err := scrub.New(opts)
	require.NoError(t, err)
}
