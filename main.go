// javascrub removes annotated declarations from Java sources and renames
// package prefixes, leaving every other byte untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/javascrub/internal/batch"
	"github.com/phobologic/javascrub/internal/config"
	"github.com/phobologic/javascrub/internal/discover"
	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/logging"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/scrub"
	"github.com/phobologic/javascrub/internal/toon"
)

var version = "dev"

// errFilesFailed is returned when at least one file could not be scrubbed.
var errFilesFailed = errors.New("some files failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the flags of the root command.
type options struct {
	configFile string
	include    []string
	exclude    []string
	strip      []string
	renames    []string
	topLevel   string
	emptyFile  string
	maxBlank   int
	output     string
	dryRun     bool
	report     bool
	progress   bool
	workers    int
	verbose    bool

	logger *zap.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "javascrub [flags] PATH",
		Short: "Scrub Java sources of annotated declarations and rename packages",
		Long: `javascrub removes declarations marked with exclude annotations, keeps
the rest byte-for-byte, and rewrites qualified names from one package prefix to
another in code, Javadoc references and string literals.

PATH is a .java file or a directory. A file is written to stdout (or --output);
a directory is scrubbed into --output at renamed package paths.

Configuration is read from .javascrub.yaml in the input directory, from
JAVASCRUB_* environment variables, and from flags (highest priority).`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logger = logging.New(stderr, opts.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runScrub(cmd, opts, path, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file (default is PATH/.javascrub.yaml)")
	f.StringArrayVar(&opts.include, "include", nil, "include marker annotation (repeatable)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "exclude marker annotation (repeatable)")
	f.StringArrayVar(&opts.strip, "strip", nil, "annotation to strip from surviving code (repeatable)")
	f.StringArrayVar(&opts.renames, "rename", nil, "package rename as from=to (repeatable)")
	f.StringVar(&opts.topLevel, "top-level", "", "unmarked top-level types: auto, include or exclude")
	f.StringVar(&opts.emptyFile, "empty-file", "", "files left without types: keep, delete or error")
	f.IntVar(&opts.maxBlank, "max-blank-lines", 0, "collapse longer runs of blank lines (0 disables)")
	f.StringVarP(&opts.output, "output", "o", "", "output file or directory")
	f.BoolVar(&opts.dryRun, "dry-run", false, "scrub without writing anything")
	f.BoolVar(&opts.report, "report", false, "print a TOON summary to stdout")
	f.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	f.IntVar(&opts.workers, "workers", 0, "number of concurrent workers (default GOMAXPROCS)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of javascrub",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(stdout, "javascrub %s\n", version)
		},
	}
}

func runScrub(cmd *cobra.Command, opts *options, path string, stdout, stderr io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}
	rootDir := path
	if !info.IsDir() {
		rootDir = filepath.Dir(path)
	}

	cfg, err := config.Load(rootDir, opts.configFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return err
	}

	s, err := scrub.New(cfg.ScrubOptions())
	if err != nil {
		return err
	}

	var report *model.Report
	if info.IsDir() {
		report, err = scrubDir(cmd.Context(), opts, cfg, s, path, stderr)
	} else {
		report, err = scrubFile(cmd.Context(), opts, s, path, stdout)
	}
	if err != nil {
		return err
	}

	if opts.report {
		_, _ = fmt.Fprintln(stdout, toon.Encode(report))
	}
	if report.Failed() {
		return fmt.Errorf("%w: %d of %d", errFilesFailed, report.Count(model.StatusFailed), len(report.Files))
	}
	return nil
}

// applyFlags overrides configuration values with the flags that were set.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("include") {
		cfg.Markers.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Markers.Exclude = opts.exclude
	}
	if flags.Changed("strip") {
		cfg.Markers.Strip = opts.strip
	}
	if flags.Changed("top-level") {
		cfg.Markers.TopLevel = opts.topLevel
	}
	if flags.Changed("empty-file") {
		cfg.Output.EmptyFile = opts.emptyFile
	}
	if flags.Changed("max-blank-lines") {
		cfg.Output.MaxBlankLines = opts.maxBlank
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("rename") {
		cfg.Rename = nil
		for _, r := range opts.renames {
			from, to, ok := strings.Cut(r, "=")
			if !ok {
				return fmt.Errorf("--rename %q: want from=to", r)
			}
			cfg.Rename = append(cfg.Rename, config.RenameRule{
				From: strings.TrimSpace(from),
				To:   strings.TrimSpace(to),
			})
		}
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func scrubFile(ctx context.Context, opts *options, s *scrub.Scrubber, path string, stdout io.Writer) (*model.Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parser := lang.Java.NewParser()
	defer parser.Close()

	fr := model.FileReport{Path: path}
	report := &model.Report{Root: filepath.Dir(path)}
	res, err := s.File(ctx, parser, path, src)
	if err != nil {
		fr.Status, fr.Err = model.StatusFailed, err
		opts.logger.Warn("scrub failed", zap.String("path", path), zap.Error(err))
		report.Files = append(report.Files, fr)
		return report, nil
	}

	fr.Pruned, fr.Stripped, fr.Imports, fr.Renamed = res.Pruned, res.Stripped, res.Imports, res.Renamed
	switch {
	case res.Removed:
		fr.Status = model.StatusRemoved
		opts.logger.Info("nothing left after scrubbing", zap.String("path", path))
	case res.Changed():
		fr.Status = model.StatusChanged
	default:
		fr.Status = model.StatusUnchanged
	}

	if !res.Removed {
		fr.Output = opts.output
		switch {
		case opts.dryRun:
		case opts.output != "":
			if err := os.WriteFile(opts.output, res.Content, 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", opts.output, err)
			}
		case !opts.report:
			_, _ = stdout.Write(res.Content)
		}
	}
	report.Files = append(report.Files, fr)
	return report, nil
}

func scrubDir(ctx context.Context, opts *options, cfg *config.Config, s *scrub.Scrubber, root string, stderr io.Writer) (*model.Report, error) {
	if opts.output == "" && !opts.dryRun {
		return nil, errors.New("--output is required when PATH is a directory (or use --dry-run)")
	}

	ig, err := discover.CompileIgnore(cfg.Paths.Ignore)
	if err != nil {
		return nil, err
	}
	files, err := discover.Files(root, ig)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Java files found in %s", root)
	}

	bopts := batch.Options{
		Workers: cfg.Workers,
		Logger:  opts.logger,
	}
	if opts.progress {
		bopts.Progress = stderr
	}
	if !opts.dryRun {
		bopts.Emit = batch.WriteTo(opts.output)
	}
	return batch.Run(ctx, s, root, files, bopts)
}
