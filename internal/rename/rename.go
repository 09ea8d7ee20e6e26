// Package rename rewrites qualified names from one package prefix to
// another across code, Javadoc references and string literals.
package rename

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
	"github.com/phobologic/javascrub/internal/prune"
)

// reflective lists the methods whose string arguments name classes or
// resources.
var reflective = map[string]struct{}{
	"forName":                   {},
	"loadClass":                 {},
	"getResource":               {},
	"getResourceAsStream":       {},
	"getSystemResource":         {},
	"getSystemResourceAsStream": {},
}

// Occurrences returns every candidate qualified name in f, in source
// order. Tokens inside removed spans are ignored.
func Occurrences(f *parse.File, removed []model.Edit) []model.Occurrence {
	var out []model.Occurrence
	var chain []parse.Token
	afterDot := false

	flush := func() {
		if len(chain) > 0 {
			out = append(out, chainOccurrence(f, chain))
		}
		chain = chain[:0]
	}

	for _, t := range f.Tokens {
		if prune.Covered(removed, t.Span) {
			flush()
			afterDot = false
			continue
		}
		switch {
		case t.Type == "identifier" || t.Type == "type_identifier":
			switch {
			case len(chain) > 0 && chain[len(chain)-1].Type == "." && t.Leading.Len() == 0:
				chain = append(chain, t)
			case afterDot:
				flush()
			default:
				flush()
				chain = append(chain, t)
			}
			afterDot = false
		case t.Type == ".":
			// Trivia ends a chain, so a name split across lines is matched
			// only up to the break.
			if len(chain) > 0 && chain[len(chain)-1].Type != "." && t.Leading.Len() == 0 {
				chain = append(chain, t)
			} else {
				flush()
			}
			afterDot = true
		case lang.IsComment(t.Type):
			flush()
			text := f.Text(t.Span)
			if isJavadoc(text) {
				out = scanJavadoc(text, t.Span.Start, out)
			}
		case t.Type == "string_literal" || t.Type == "text_block":
			flush()
			afterDot = false
			quote := 1
			if t.Type == "text_block" {
				quote = 3
			}
			if t.Span.Len() < 2*quote {
				continue
			}
			body := model.Span{Start: t.Span.Start + quote, End: t.Span.End - quote}
			out = scanText(f.Text(body), body.Start, literalKind(t.Node, f.Source), out)
		default:
			flush()
			afterDot = false
		}
	}
	flush()
	return out
}

// Edits returns the replacements that apply rules to f. Occurrences inside
// removed spans are skipped.
func Edits(f *parse.File, rules *Rules, removed []model.Edit) []model.Edit {
	if rules == nil || rules.Len() == 0 {
		return nil
	}
	var edits []model.Edit
	for _, occ := range Occurrences(f, removed) {
		from, to, ok := rules.Match(occ.Text, occ.Sep)
		if !ok || from == to {
			continue
		}
		edits = append(edits, model.Edit{
			Span: model.Span{Start: occ.Span.Start, End: occ.Span.Start + len(from)},
			Text: to,
		})
	}
	return edits
}

// chainOccurrence builds the occurrence for a run of identifiers joined by
// dots. A trailing dot is not part of the name.
func chainOccurrence(f *parse.File, chain []parse.Token) model.Occurrence {
	last := len(chain) - 1
	if chain[last].Type == "." {
		last--
	}
	span := model.Span{Start: chain[0].Span.Start, End: chain[last].Span.End}
	return model.Occurrence{
		Kind: chainKind(chain[0].Node),
		Span: span,
		Text: f.Text(span),
		Sep:  '.',
	}
}

func chainKind(n *sitter.Node) model.ContextKind {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "package_declaration":
			return model.PackageDecl
		case "import_declaration":
			for i := 0; i < int(p.ChildCount()); i++ {
				if p.Child(i).Type() == "static" {
					return model.StaticImport
				}
			}
			return model.Import
		}
	}
	return model.CodeReference
}

// literalKind reports whether the literal n is an argument of a reflective
// lookup such as Class.forName.
func literalKind(n *sitter.Node, source []byte) model.ContextKind {
	args := n.Parent()
	if args == nil || args.Type() != "argument_list" {
		return model.StringLiteral
	}
	call := args.Parent()
	if call == nil || call.Type() != "method_invocation" {
		return model.StringLiteral
	}
	name := call.ChildByFieldName("name")
	if name == nil {
		return model.StringLiteral
	}
	if _, ok := reflective[lang.NodeText(name, source)]; ok {
		return model.ReflectionArg
	}
	return model.StringLiteral
}

func isJavadoc(text string) bool {
	return strings.HasPrefix(text, "/**") && text != "/**/"
}
