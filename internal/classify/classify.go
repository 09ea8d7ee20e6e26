// Package classify decides which declarations survive scrubbing, based on
// include and exclude marker annotations.
//
// The rule is asymmetric: an exclude marker always wins and sweeps every
// descendant along with it, while an include marker only promotes a
// top-level declaration. Below the top level an include marker confirms the
// enclosing decision and can never revive an excluded scope.
package classify

import (
	"fmt"
	"strings"

	"github.com/phobologic/javascrub/internal/model"
)

// TopLevelPolicy selects the decision for unmarked top-level declarations.
type TopLevelPolicy string

const (
	// Auto excludes unmarked top-level declarations when include markers
	// are configured and includes them otherwise.
	Auto TopLevelPolicy = "auto"
	// Whitelist excludes unmarked top-level declarations.
	Whitelist TopLevelPolicy = "exclude"
	// Blacklist includes unmarked top-level declarations.
	Blacklist TopLevelPolicy = "include"
)

// ParsePolicy converts a configuration string to a TopLevelPolicy.
func ParsePolicy(s string) (TopLevelPolicy, error) {
	switch p := TopLevelPolicy(s); p {
	case "", Auto:
		return Auto, nil
	case Whitelist, Blacklist:
		return p, nil
	}
	return "", fmt.Errorf("unknown top-level policy %q (want %s, %s or %s)", s, Auto, Whitelist, Blacklist)
}

// Options configures a Classifier.
type Options struct {
	Include  []string
	Exclude  []string
	TopLevel TopLevelPolicy
}

// Classifier computes include/exclude decisions for declaration trees.
// It is immutable and safe for concurrent use.
type Classifier struct {
	include    []string
	exclude    []string
	topDefault model.Decision
}

// New returns a Classifier for the given markers.
func New(opts Options) *Classifier {
	c := &Classifier{
		include: append([]string(nil), opts.Include...),
		exclude: append([]string(nil), opts.Exclude...),
	}
	switch opts.TopLevel {
	case Whitelist:
		c.topDefault = model.Excluded
	case Blacklist:
		c.topDefault = model.Included
	default:
		if len(c.include) > 0 {
			c.topDefault = model.Excluded
		} else {
			c.topDefault = model.Included
		}
	}
	return c
}

// Decisions maps every declaration of a file to its decision.
type Decisions map[*model.Declaration]model.Decision

// Classify walks decls top-down and decides every declaration.
func (c *Classifier) Classify(decls []*model.Declaration) Decisions {
	out := make(Decisions)
	var visit func(d *model.Declaration, parent model.Decision)
	visit = func(d *model.Declaration, parent model.Decision) {
		dec := c.Decide(parent, d.Markers)
		out[d] = dec
		for _, child := range d.Children {
			visit(child, dec)
		}
	}
	for _, d := range decls {
		visit(d, 0)
	}
	return out
}

// Decide returns the decision for a declaration whose enclosing
// declaration was decided as parent. A zero parent means top level.
func (c *Classifier) Decide(parent model.Decision, markers []model.Marker) model.Decision {
	if c.has(markers, c.exclude) || parent == model.Excluded {
		return model.Excluded
	}
	if parent == 0 {
		if c.has(markers, c.include) {
			return model.Included
		}
		return c.topDefault
	}
	return parent
}

func (c *Classifier) has(markers []model.Marker, names []string) bool {
	for _, m := range markers {
		for _, name := range names {
			if Matches(m.Name, name) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether an annotation written as annotation refers to
// the configured marker. Either side may be simple or qualified.
func Matches(annotation, marker string) bool {
	if annotation == marker {
		return true
	}
	if strings.HasSuffix(marker, "."+annotation) {
		return true
	}
	if !strings.Contains(marker, ".") {
		return lastSegment(annotation) == marker
	}
	return false
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
