package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/javascrub/internal/config"
)

const (
	sentinelStart = "# javascrub:start"
	sentinelEnd   = "# javascrub:end"
)

// newInitCmd implements `javascrub init`, which writes (or updates) a
// starter configuration file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [flags] [path]",
		Short: "Write a starter .javascrub.yaml",
		Long: `Write a starter javascrub configuration. The generated block is wrapped in
sentinel comments so it can be refreshed in place on subsequent runs. A file
that exists without the sentinel block is left alone.

path is a directory or a file; it defaults to ./.javascrub.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := config.FileName
	if len(args) > 0 {
		path = args[0]
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, config.FileName)
		}
	}

	existing, _ := os.ReadFile(path)
	updated, err := applySection(string(existing), section)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote javascrub configuration to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped starter configuration.
func generateSection() string {
	body := `# Annotations that decide which declarations survive. A declaration
# carrying an exclude marker is removed together with everything nested in
# it. Names match by simple or qualified name.
markers:
  include: []
  exclude:
    - com.google.common.annotations.GwtIncompatible
  # Unmarked top-level types: auto (exclude when include markers are set),
  # include, or exclude.
  top_level: auto
  # Annotations removed from surviving code.
  strip: []

# Package prefix renames, applied to code, Javadoc references, string
# literals and output paths. The longest matching prefix wins.
rename: []
#  - from: com.google.example
#    to: com.othercompany.example

output:
  # Files left without any type: keep, delete or error.
  empty_file: keep
  # Collapse runs of more blank lines than this; 0 leaves them alone.
  max_blank_lines: 0

paths:
  ignore:
    - "**/generated/**"

# Concurrent workers; 0 uses every CPU. Run "javascrub --help" for flags.
workers: 0`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection replaces an existing sentinel block in content or returns
// section alone for an empty file. Content without the block is never
// rewritten, since a second set of keys would not be valid YAML.
func applySection(content, section string) (string, error) {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):], nil
	}

	if strings.TrimSpace(content) != "" {
		return "", errors.New("file exists without a javascrub block; not overwriting")
	}
	return section + "\n", nil
}
