// Package prune turns classification decisions into deletion edits.
package prune

import (
	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/edit"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
)

// Edits returns one deletion per outermost excluded declaration of f.
// Children of an excluded declaration are covered by its span and are not
// visited. Adjacent deletions that share a blank line are merged.
func Edits(f *parse.File, decisions classify.Decisions) []model.Edit {
	var edits []model.Edit
	var visit func(d *model.Declaration)
	visit = func(d *model.Declaration) {
		if decisions[d] == model.Excluded {
			edits = append(edits, model.Edit{Span: d.Span})
			return
		}
		for _, c := range d.Children {
			visit(c)
		}
	}
	for _, d := range f.Decls {
		visit(d)
	}
	return edit.Merge(edits)
}

// SurvivingTypes counts top-level type declarations not excluded.
func SurvivingTypes(f *parse.File, decisions classify.Decisions) int {
	n := 0
	for _, d := range f.Decls {
		if d.Kind == model.Type && decisions[d] != model.Excluded {
			n++
		}
	}
	return n
}

// Covered reports whether s lies within one of the removed spans.
func Covered(removed []model.Edit, s model.Span) bool {
	for _, r := range removed {
		if r.Span.Overlaps(s) || (s.Len() == 0 && r.Span.Start <= s.Start && s.Start < r.Span.End) {
			return true
		}
	}
	return false
}
