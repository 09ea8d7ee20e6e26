// Package parse builds a lossless model of Java source files using tree-sitter.
//
// The model never re-renders source: tokens, declarations and imports are
// addressed by byte spans into the original content, and every byte of the
// input belongs either to a token or to the trivia between tokens.
package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/model"
)

// maxNear bounds the snippet quoted by a ParseError.
const maxNear = 40

// atomicTypes are nodes kept as a single token even though tree-sitter may
// give them children.
var atomicTypes = map[string]struct{}{
	"string_literal":    {},
	"character_literal": {},
	"text_block":        {},
}

// Token is a leaf of the concrete syntax tree.
type Token struct {
	Type    string
	Span    model.Span
	Leading model.Span // trivia between the previous token and this one
	Node    *sitter.Node
}

// Import is a single import declaration.
type Import struct {
	Name     string // dotted target without "static" or ".*"
	Static   bool
	Wildcard bool
	Node     model.Span
	Span     model.Span // Node widened to whole lines
}

// SimpleName returns the last segment of the import target.
func (i Import) SimpleName() string {
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[idx+1:]
	}
	return i.Name
}

// File is a parsed source file.
type File struct {
	Path    string
	Source  []byte
	Tokens  []Token
	Decls   []*model.Declaration // top-level declarations
	Imports []Import

	tree *sitter.Tree
}

// Parse parses a Java source file. The parser must be created for Java and
// must not be shared between goroutines. The returned File must be closed.
func Parse(ctx context.Context, parser *sitter.Parser, path string, source []byte) (*File, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := newParseError(path, firstError(root), source)
		tree.Close()
		return nil, perr
	}

	f := &File{Path: path, Source: source, tree: tree}
	f.collectTokens(root)
	f.collectDecls(root)
	f.collectImports(root)
	return f, nil
}

// Close releases the underlying syntax tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Root returns the root node of the syntax tree.
func (f *File) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the source text covered by s.
func (f *File) Text(s model.Span) string {
	return string(f.Source[s.Start:s.End])
}

// Reconstruct concatenates every token with its leading trivia and the
// trailing trivia of the file. The result always equals Source.
func (f *File) Reconstruct() []byte {
	var b strings.Builder
	b.Grow(len(f.Source))
	end := 0
	for _, t := range f.Tokens {
		b.Write(f.Source[t.Leading.Start:t.Leading.End])
		b.Write(f.Source[t.Span.Start:t.Span.End])
		end = t.Span.End
	}
	b.Write(f.Source[end:])
	return []byte(b.String())
}

// TopLevelTypes returns the number of top-level type declarations.
func (f *File) TopLevelTypes() int {
	n := 0
	for _, d := range f.Decls {
		if d.Kind == model.Type {
			n++
		}
	}
	return n
}

func (f *File) collectTokens(n *sitter.Node) {
	if _, atomic := atomicTypes[n.Type()]; atomic || n.ChildCount() == 0 {
		start, end := int(n.StartByte()), int(n.EndByte())
		if start == end {
			return
		}
		prev := 0
		if len(f.Tokens) > 0 {
			prev = f.Tokens[len(f.Tokens)-1].Span.End
		}
		f.Tokens = append(f.Tokens, Token{
			Type:    n.Type(),
			Span:    model.Span{Start: start, End: end},
			Leading: model.Span{Start: prev, End: start},
			Node:    n,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		f.collectTokens(n.Child(i))
	}
}

func (f *File) collectImports(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() != "import_declaration" {
			continue
		}
		imp := Import{Node: nodeSpan(n)}
		var parts []string
		walk(n, func(c *sitter.Node) bool {
			switch c.Type() {
			case "identifier":
				parts = append(parts, lang.NodeText(c, f.Source))
			case "static":
				imp.Static = true
			case "asterisk", "*":
				imp.Wildcard = true
			}
			return true
		})
		imp.Name = strings.Join(parts, ".")
		imp.Span = WholeLines(f.Source, imp.Node)
		f.Imports = append(f.Imports, imp)
	}
}

func nodeSpan(n *sitter.Node) model.Span {
	return model.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// walk visits n and its descendants in source order. Returning false from
// fn skips the node's children.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsError() || c.IsMissing() || c.HasError() {
			if found := firstError(c); found != nil {
				return found
			}
		}
	}
	return n
}

func newParseError(path string, n *sitter.Node, source []byte) *ParseError {
	pt := n.StartPoint()
	perr := &ParseError{
		Path:   path,
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
	}
	if n.IsMissing() {
		perr.Missing = n.Type()
		return perr
	}
	near := lang.NodeText(n, source)
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	if len(near) > maxNear {
		near = near[:maxNear]
	}
	perr.Near = strings.TrimSpace(near)
	return perr
}
