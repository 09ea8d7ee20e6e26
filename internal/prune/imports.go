package prune

import (
	"regexp"

	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
)

// UnusedImports returns deletions for imports whose simple name no longer
// appears in the text that survives removed, and for repeated imports.
// Wildcard imports are always kept.
func UnusedImports(f *parse.File, removed []model.Edit) []model.Edit {
	if len(f.Imports) == 0 {
		return nil
	}
	body := survivingText(f, removed)

	type key struct {
		name     string
		static   bool
		wildcard bool
	}
	seen := make(map[key]bool)
	var edits []model.Edit
	for _, imp := range f.Imports {
		if Covered(removed, imp.Node) {
			continue
		}
		k := key{imp.Name, imp.Static, imp.Wildcard}
		if seen[k] {
			edits = append(edits, model.Edit{Span: imp.Span})
			continue
		}
		seen[k] = true
		if imp.Wildcard {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(imp.SimpleName()) + `\b`)
		if !re.Match(body) {
			edits = append(edits, model.Edit{Span: imp.Span})
		}
	}
	return edits
}

// survivingText returns the file content minus removed spans and import
// declarations.
func survivingText(f *parse.File, removed []model.Edit) []byte {
	skip := make([]model.Span, 0, len(removed)+len(f.Imports))
	for _, r := range removed {
		skip = append(skip, r.Span)
	}
	for _, imp := range f.Imports {
		skip = append(skip, imp.Node)
	}

	out := make([]byte, 0, len(f.Source))
	for i := 0; i < len(f.Source); i++ {
		if j := skipEnd(skip, i); j > i {
			out = append(out, ' ')
			i = j - 1
			continue
		}
		out = append(out, f.Source[i])
	}
	return out
}

func skipEnd(skip []model.Span, pos int) int {
	for _, s := range skip {
		if s.Start <= pos && pos < s.End {
			return s.End
		}
	}
	return pos
}
