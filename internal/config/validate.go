package config

import (
	"errors"
	"fmt"

	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/discover"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/rename"
	"github.com/phobologic/javascrub/internal/scrub"
)

var (
	// ErrInvalidPolicy indicates an unknown top-level policy
	ErrInvalidPolicy = errors.New("invalid top-level policy")

	// ErrConflictingMarker indicates a marker listed as both include and exclude
	ErrConflictingMarker = errors.New("marker is both include and exclude")

	// ErrInvalidRule indicates a malformed rename rule
	ErrInvalidRule = errors.New("invalid rename rule")

	// ErrInvalidEmptyFile indicates an unknown empty-file action
	ErrInvalidEmptyFile = errors.New("invalid empty-file action")

	// ErrInvalidBlankLines indicates a negative blank line limit
	ErrInvalidBlankLines = errors.New("invalid blank line limit")

	// ErrInvalidPattern indicates an ignore pattern that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := classify.ParsePolicy(cfg.Markers.TopLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidPolicy, err))
	}

	exclude := make(map[string]bool, len(cfg.Markers.Exclude))
	for _, m := range cfg.Markers.Exclude {
		exclude[m] = true
	}
	for _, m := range cfg.Markers.Include {
		if exclude[m] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrConflictingMarker, m))
		}
	}

	rules := make([]model.RenameRule, len(cfg.Rename))
	for i, r := range cfg.Rename {
		rules[i] = model.RenameRule{From: r.From, To: r.To}
	}
	if _, err := rename.NewRules(rules); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidRule, err))
	}

	if _, err := scrub.ParseEmptyFileAction(cfg.Output.EmptyFile); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidEmptyFile, err))
	}

	if cfg.Output.MaxBlankLines < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidBlankLines, cfg.Output.MaxBlankLines))
	}

	if _, err := discover.CompileIgnore(cfg.Paths.Ignore); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Workers))
	}

	return errors.Join(errs...)
}
