package parse

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/model"
)

func (f *File) collectDecls(root *sitter.Node) {
	f.Decls = f.members(root)
}

// members returns the declarations directly held by container, descending
// through nested body nodes such as enum_body_declarations.
func (f *File) members(container *sitter.Node) []*model.Declaration {
	var decls []*model.Declaration
	for i := 0; i < int(container.NamedChildCount()); i++ {
		n := container.NamedChild(i)
		if lang.Java.IsBody(n.Type()) {
			decls = append(decls, f.members(n)...)
			continue
		}
		if kind, ok := lang.Java.IsDeclaration(n.Type()); ok {
			decls = append(decls, f.declaration(n, kind))
		}
	}
	return decls
}

func (f *File) declaration(n *sitter.Node, kind model.DeclKind) *model.Declaration {
	d := &model.Declaration{
		Kind:    kind,
		Name:    declName(n, f.Source),
		Node:    nodeSpan(n),
		Markers: markers(n, f.Source),
	}

	start := d.Node.Start
	if doc := attachedDoc(n, f.Source); doc != nil {
		start = int(doc.StartByte())
	}
	end := d.Node.End
	if n.Type() == "enum_constant" {
		if next := n.NextSibling(); next != nil && next.Type() == "," {
			end = int(next.EndByte())
		}
	}
	d.Span = f.prunable(model.Span{Start: start, End: end})

	if body := n.ChildByFieldName("body"); body != nil {
		d.Children = f.members(body)
	}
	return d
}

func declName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return lang.NodeText(name, source)
	}
	// Fields: the first declarator's name.
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		if name := decl.ChildByFieldName("name"); name != nil {
			return lang.NodeText(name, source)
		}
	}
	return ""
}

func markers(n *sitter.Node, source []byte) []model.Marker {
	var out []model.Marker
	for i := 0; i < int(n.NamedChildCount()); i++ {
		mods := n.NamedChild(i)
		if mods.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(mods.NamedChildCount()); j++ {
			a := mods.NamedChild(j)
			if a.Type() != "marker_annotation" && a.Type() != "annotation" {
				continue
			}
			name := a.ChildByFieldName("name")
			if name == nil {
				continue
			}
			out = append(out, model.Marker{
				Name: stripSpace(lang.NodeText(name, source)),
				Span: nodeSpan(a),
			})
		}
	}
	return out
}

// attachedDoc returns the Javadoc comment directly preceding n, if any.
func attachedDoc(n *sitter.Node, source []byte) *sitter.Node {
	prev := n.PrevSibling()
	if prev == nil || !lang.IsComment(prev.Type()) {
		return nil
	}
	if !strings.HasPrefix(lang.NodeText(prev, source), "/**") {
		return nil
	}
	if !isSpace(source[prev.EndByte():n.StartByte()]) {
		return nil
	}
	return prev
}

// prunable widens a declaration to the unit removed when it is excluded:
// its indentation, the rest of its last line including a trailing comment
// and the line break, and the blank line that separates it from a neighbor.
func (f *File) prunable(s model.Span) model.Span {
	src := f.Source
	ls := lineStart(src, s.Start)
	le, ok := lineEnd(src, s.End)
	if !ok && isSpace(src[ls:s.Start]) {
		if end, found := trailingComment(src, s.End); found {
			le, ok = lineEnd(src, end)
		}
	}
	if !ok || !isSpace(src[ls:s.Start]) {
		// Shares a line with other code: take surrounding blanks only.
		if !ok {
			for s.End < len(src) && isHorizontal(src[s.End]) {
				s.End++
			}
		} else {
			for s.Start > ls && isHorizontal(src[s.Start-1]) {
				s.Start--
			}
		}
		return s
	}
	s.Start, s.End = ls, le

	_, blankBefore := blankLineBefore(src, s.Start)
	prev := prevNonSpace(src, s.Start)
	if after, ok := blankLineAfter(src, s.End); ok && (blankBefore || prev == '{' || prev == 0) {
		s.End = after
	} else if before, ok := blankLineBefore(src, s.Start); ok {
		if next := nextNonSpace(src, s.End); next == '}' || next == 0 {
			s.Start = before
		}
	}
	return s
}

// WholeLines widens s to full lines, including the line break, when
// nothing but indentation and trailing blanks share those lines.
func WholeLines(src []byte, s model.Span) model.Span {
	ls := lineStart(src, s.Start)
	le, ok := lineEnd(src, s.End)
	if !ok || !isSpace(src[ls:s.Start]) {
		return s
	}
	return model.Span{Start: ls, End: le}
}

// trailingComment returns the end of a comment that follows pos after
// horizontal blanks on the same line.
func trailingComment(src []byte, pos int) (int, bool) {
	for pos < len(src) && isHorizontal(src[pos]) {
		pos++
	}
	rest := src[pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("//")):
		end := bytes.IndexAny(rest, "\r\n")
		if end < 0 {
			return len(src), true
		}
		return pos + end, true
	case bytes.HasPrefix(rest, []byte("/*")):
		end := bytes.Index(rest[2:], []byte("*/"))
		if end < 0 || bytes.ContainsAny(rest[:end+2], "\r\n") {
			return pos, false
		}
		return pos + end + 4, true
	}
	return pos, false
}

// lineStart returns the offset of the first byte of the line holding pos.
func lineStart(src []byte, pos int) int {
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the offset just past the line terminator following pos,
// or len(src) at end of file. It fails if non-blank text follows pos on the
// same line.
func lineEnd(src []byte, pos int) (int, bool) {
	for pos < len(src) && isHorizontal(src[pos]) {
		pos++
	}
	switch {
	case pos == len(src):
		return pos, true
	case src[pos] == '\n':
		return pos + 1, true
	case src[pos] == '\r':
		if pos+1 < len(src) && src[pos+1] == '\n' {
			return pos + 2, true
		}
		return pos + 1, true
	}
	return pos, false
}

// blankLineAfter reports whether the line starting at pos is blank and
// returns the offset past it.
func blankLineAfter(src []byte, pos int) (int, bool) {
	if pos >= len(src) {
		return pos, false
	}
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\r', '\f':
		case '\n':
			return i + 1, true
		default:
			return pos, false
		}
	}
	return pos, false
}

// blankLineBefore reports whether the line ending just before the line
// start pos is blank and returns its start.
func blankLineBefore(src []byte, pos int) (int, bool) {
	if pos == 0 || src[pos-1] != '\n' {
		return pos, false
	}
	start := lineStart(src, pos-1)
	if !isSpace(src[start : pos-1]) {
		return pos, false
	}
	return start, true
}

func prevNonSpace(src []byte, pos int) byte {
	for i := pos - 1; i >= 0; i-- {
		if !isSpaceByte(src[i]) {
			return src[i]
		}
	}
	return 0
}

func nextNonSpace(src []byte, pos int) byte {
	for i := pos; i < len(src); i++ {
		if !isSpaceByte(src[i]) {
			return src[i]
		}
	}
	return 0
}

func isSpace(b []byte) bool {
	for _, c := range b {
		if !isSpaceByte(c) {
			return false
		}
	}
	return true
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isHorizontal(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
