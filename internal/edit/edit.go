// Package edit applies span-based edits to original file content.
//
// Edits are collected for a whole file, sorted by start offset and checked
// for overlap, then queued on an rf edit buffer that produces the result in
// original-offset coordinates.
package edit

import (
	"fmt"
	"sort"

	rfedit "rsc.io/rf/edit"

	"github.com/phobologic/javascrub/internal/model"
)

// OverlapError reports two edits that cover the same bytes. Callers only
// produce disjoint edits, so it indicates a bug rather than bad input.
type OverlapError struct {
	First, Second model.Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("internal error: overlapping edits %s and %s", e.First.Span, e.Second.Span)
}

// Sort orders edits by start offset. Insertions at the same offset keep
// their relative order.
func Sort(edits []model.Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		return edits[i].Span.End < edits[j].Span.End
	})
}

// Apply returns src with edits applied. The edits slice is sorted in place.
func Apply(src []byte, edits []model.Edit) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}
	Sort(edits)
	for i, e := range edits {
		if e.Span.Start < 0 || e.Span.End > len(src) || e.Span.Start > e.Span.End {
			return nil, fmt.Errorf("internal error: edit %s out of range [0,%d)", e.Span, len(src))
		}
		if i > 0 && edits[i-1].Span.End > e.Span.Start {
			return nil, &OverlapError{First: edits[i-1], Second: e}
		}
	}

	buf := rfedit.NewBuffer(src)
	for _, e := range edits {
		buf.Replace(e.Span.Start, e.Span.End, e.Text)
	}
	return buf.Bytes(), nil
}

// Merge coalesces overlapping or touching deletions into single edits.
// Edits with replacement text are returned unchanged.
func Merge(deletions []model.Edit) []model.Edit {
	if len(deletions) < 2 {
		return deletions
	}
	Sort(deletions)
	out := deletions[:1]
	for _, e := range deletions[1:] {
		prev := &out[len(out)-1]
		if prev.Text == "" && e.Text == "" && e.Span.Start <= prev.Span.End {
			if e.Span.End > prev.Span.End {
				prev.Span.End = e.Span.End
			}
			continue
		}
		out = append(out, e)
	}
	return out
}
