// Package scrub runs the per-file pipeline: parse, classify, prune,
// rename and emit.
package scrub

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/edit"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
	"github.com/phobologic/javascrub/internal/prune"
	"github.com/phobologic/javascrub/internal/rename"
)

// ErrEmptyFile is returned for a file left without top-level types when
// the empty-file action is EmptyFileError.
var ErrEmptyFile = errors.New("no top-level types left after scrubbing")

// ErrMaxBlankLines is returned by New for a blank line limit it cannot use.
var ErrMaxBlankLines = errors.New("invalid maximum blank lines")

// EmptyFileAction says what happens to a file that holds no top-level type
// after scrubbing, whether its types were excluded or it never had any.
type EmptyFileAction string

const (
	EmptyFileKeep   EmptyFileAction = "keep"
	EmptyFileDelete EmptyFileAction = "delete"
	EmptyFileError  EmptyFileAction = "error"
)

// ParseEmptyFileAction converts a configuration string to an action.
func ParseEmptyFileAction(s string) (EmptyFileAction, error) {
	switch a := EmptyFileAction(s); a {
	case "":
		return EmptyFileKeep, nil
	case EmptyFileKeep, EmptyFileDelete, EmptyFileError:
		return a, nil
	}
	return "", fmt.Errorf("unknown empty-file action %q (want %s, %s or %s)",
		s, EmptyFileKeep, EmptyFileDelete, EmptyFileError)
}

// Options configures a Scrubber.
type Options struct {
	Include          []string
	Exclude          []string
	TopLevel         classify.TopLevelPolicy
	StripAnnotations []string
	Renames          []model.RenameRule
	EmptyFile        EmptyFileAction
	MaxBlankLines    int // collapse longer runs of blank lines; 0 disables
}

// Scrubber applies one configuration to any number of files. It holds no
// per-file state and is safe for concurrent use; each goroutine supplies
// its own parser.
type Scrubber struct {
	classifier *classify.Classifier
	rules      *rename.Rules
	strip      []string
	emptyFile  EmptyFileAction
	blankRun   *regexp.Regexp
	blankRepl  []byte
}

// Result is the outcome of scrubbing one file.
type Result struct {
	Path    string // output path after package renaming
	Content []byte
	Removed bool // the file has nothing left and must not be written

	Pruned   int // excluded declaration spans removed
	Stripped int // annotations stripped
	Imports  int // unused imports removed
	Renamed  int // qualified-name occurrences rewritten
	Blank    int // runs of blank lines collapsed
}

// Changed reports whether the output differs from the input in any way.
func (r *Result) Changed() bool {
	return r.Removed || r.Pruned+r.Stripped+r.Imports+r.Renamed+r.Blank > 0
}

// New validates opts and returns a Scrubber.
func New(opts Options) (*Scrubber, error) {
	rules, err := rename.NewRules(opts.Renames)
	if err != nil {
		return nil, err
	}
	action, err := ParseEmptyFileAction(string(opts.EmptyFile))
	if err != nil {
		return nil, err
	}
	if opts.MaxBlankLines < 0 {
		return nil, fmt.Errorf("%w: %d", ErrMaxBlankLines, opts.MaxBlankLines)
	}
	s := &Scrubber{
		classifier: classify.New(classify.Options{
			Include:  opts.Include,
			Exclude:  opts.Exclude,
			TopLevel: opts.TopLevel,
		}),
		rules:     rules,
		strip:     append([]string(nil), opts.StripAnnotations...),
		emptyFile: action,
	}
	if n := opts.MaxBlankLines; n > 0 {
		re, err := regexp.Compile(fmt.Sprintf(`\n{%d,}`, n+2))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMaxBlankLines, err)
		}
		s.blankRun = re
		s.blankRepl = []byte(strings.Repeat("\n", n+1))
	}
	return s, nil
}

// Rules returns the rename rules.
func (s *Scrubber) Rules() *rename.Rules { return s.rules }

// File scrubs src. path is used for error messages and, relative to the
// input root, for the output path. parser must not be shared between
// goroutines.
func (s *Scrubber) File(ctx context.Context, parser *sitter.Parser, path string, src []byte) (*Result, error) {
	f, err := parse.Parse(ctx, parser, path, src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &Result{Path: s.rules.RewritePath(path)}
	decisions := s.classifier.Classify(f.Decls)

	if prune.SurvivingTypes(f, decisions) == 0 && !alwaysMeaningful(path) {
		switch s.emptyFile {
		case EmptyFileDelete:
			res.Removed = true
			return res, nil
		case EmptyFileError:
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
		}
	}

	removed := prune.Edits(f, decisions)
	res.Pruned = len(removed)

	stripped := prune.Annotations(f, decisions, s.strip, removed)
	res.Stripped = len(stripped)
	removed = append(removed, stripped...)

	if len(removed) > 0 {
		imports := prune.UnusedImports(f, removed)
		res.Imports = len(imports)
		removed = append(removed, imports...)
	}

	renames := rename.Edits(f, s.rules, removed)
	res.Renamed = len(renames)

	out, err := edit.Apply(f.Source, append(removed, renames...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Content, res.Blank = s.coalesce(out)
	return res, nil
}

// coalesce collapses runs of more than the configured number of blank
// lines. Only bare newlines count; lines holding whitespace end a run.
func (s *Scrubber) coalesce(src []byte) ([]byte, int) {
	if s.blankRun == nil {
		return src, 0
	}
	runs := 0
	out := s.blankRun.ReplaceAllFunc(src, func([]byte) []byte {
		runs++
		return s.blankRepl
	})
	return out, runs
}

// alwaysMeaningful reports whether a file is kept even without types.
func alwaysMeaningful(path string) bool {
	switch filepath.Base(path) {
	case "package-info.java", "module-info.java":
		return true
	}
	return false
}
