package prune

import (
	"github.com/phobologic/javascrub/internal/classify"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
)

// Annotations returns deletions for annotations named in names that sit on
// surviving declarations. An annotation alone on its line takes the line
// with it; otherwise the blanks following it go too.
func Annotations(f *parse.File, decisions classify.Decisions, names []string, removed []model.Edit) []model.Edit {
	if len(names) == 0 {
		return nil
	}
	var edits []model.Edit
	var visit func(d *model.Declaration)
	visit = func(d *model.Declaration) {
		if decisions[d] == model.Excluded {
			return
		}
		for _, m := range d.Markers {
			if !matchesAny(m.Name, names) || Covered(removed, m.Span) {
				continue
			}
			s := parse.WholeLines(f.Source, m.Span)
			if s == m.Span {
				for s.End < len(f.Source) && (f.Source[s.End] == ' ' || f.Source[s.End] == '\t') {
					s.End++
				}
			}
			edits = append(edits, model.Edit{Span: s})
		}
		for _, c := range d.Children {
			visit(c)
		}
	}
	for _, d := range f.Decls {
		visit(d)
	}
	return edits
}

func matchesAny(annotation string, names []string) bool {
	for _, n := range names {
		if classify.Matches(annotation, n) {
			return true
		}
	}
	return false
}
