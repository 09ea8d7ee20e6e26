// Package batch scrubs many files concurrently with per-file failure
// isolation.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/javascrub/internal/discover"
	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/scrub"
)

// EmitFunc persists a scrubbed file. It is called concurrently and only
// for files that were not removed.
type EmitFunc func(res *scrub.Result) error

// Options configures Run.
type Options struct {
	Workers  int         // 0 means runtime.GOMAXPROCS(0)
	Logger   *zap.Logger // nil disables logging
	Progress io.Writer   // progress bar destination, nil for none
	Emit     EmitFunc    // nil for a dry run
}

// CollisionError reports two inputs renamed to the same output path.
type CollisionError struct {
	Output string
	Other  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("output path %s collides with %s", e.Output, e.Other)
}

// Run scrubs files under root and returns one report entry per file, in
// input order. A failing file never stops the others; the returned error
// is non-nil only when ctx is canceled.
func Run(ctx context.Context, s *scrub.Scrubber, root string, files []discover.FileEntry, opts Options) (*model.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &model.Report{Root: root, Files: make([]model.FileReport, len(files))}
	for i, f := range files {
		report.Files[i].Path = f.Path
	}

	pending := checkCollisions(s, files, report)

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(pending) {
		numWorkers = len(pending)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(files) > 0 {
		bar = newBar(opts.Progress, len(files))
		_ = bar.Add(len(files) - len(pending))
	}

	work := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	for range numWorkers {
		g.Go(func() error {
			// Each goroutine gets its own parser
			parser := lang.Java.NewParser()
			defer parser.Close()

			for idx := range work {
				fr := &report.Files[idx]
				scrubOne(gctx, s, parser, root, fr, opts.Emit)
				if fr.Status == model.StatusFailed {
					logger.Warn("scrub failed", zap.String("path", fr.Path), zap.Error(fr.Err))
				} else {
					logger.Debug("scrubbed",
						zap.String("path", fr.Path),
						zap.String("status", string(fr.Status)),
						zap.Int("pruned", fr.Pruned),
						zap.Int("renamed", fr.Renamed))
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(work)
		for _, idx := range pending {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case work <- idx:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	logger.Info("scrub complete",
		zap.Int("files", len(files)),
		zap.Int("changed", report.Count(model.StatusChanged)),
		zap.Int("removed", report.Count(model.StatusRemoved)),
		zap.Int("failed", report.Count(model.StatusFailed)))
	return report, nil
}

// checkCollisions fails every file whose output path is shared with
// another input and returns the indexes of the remaining files.
func checkCollisions(s *scrub.Scrubber, files []discover.FileEntry, report *model.Report) []int {
	byOutput := make(map[string][]int, len(files))
	for i, f := range files {
		out := s.Rules().RewritePath(f.Path)
		byOutput[out] = append(byOutput[out], i)
	}
	var pending []int
	for i, f := range files {
		out := s.Rules().RewritePath(f.Path)
		group := byOutput[out]
		if len(group) == 1 {
			pending = append(pending, i)
			continue
		}
		other := group[0]
		if other == i {
			other = group[1]
		}
		report.Files[i].Status = model.StatusFailed
		report.Files[i].Err = &CollisionError{Output: out, Other: files[other].Path}
	}
	return pending
}

func scrubOne(ctx context.Context, s *scrub.Scrubber, parser *sitter.Parser, root string, fr *model.FileReport, emit EmitFunc) {
	fail := func(err error) {
		fr.Status = model.StatusFailed
		fr.Err = err
	}

	src, err := os.ReadFile(filepath.Join(root, fr.Path))
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", fr.Path, err))
		return
	}

	res, err := s.File(ctx, parser, fr.Path, src)
	if err != nil {
		fail(err)
		return
	}

	fr.Pruned, fr.Stripped, fr.Imports, fr.Renamed = res.Pruned, res.Stripped, res.Imports, res.Renamed
	switch {
	case res.Removed:
		fr.Status = model.StatusRemoved
		return
	case res.Changed():
		fr.Status = model.StatusChanged
	default:
		fr.Status = model.StatusUnchanged
	}
	fr.Output = res.Path

	if emit != nil {
		if err := emit(res); err != nil {
			fail(fmt.Errorf("writing %s: %w", res.Path, err))
		}
	}
}

func newBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Scrubbing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
