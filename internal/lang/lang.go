// Package lang provides a language registry mapping file extensions to
// tree-sitter languages.
package lang

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/javascrub/internal/model"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// DeclarationTypes maps node types that form prunable declarations to
	// the kind reported for them.
	DeclarationTypes map[string]model.DeclKind

	// BodyTypes lists node types whose named children are member declarations.
	BodyTypes map[string]struct{}
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// IsDeclaration reports whether nodeType is a prunable declaration and
// returns its kind.
func (l *Language) IsDeclaration(nodeType string) (model.DeclKind, bool) {
	kind, ok := l.DeclarationTypes[nodeType]
	return kind, ok
}

// IsBody reports whether nodeType holds member declarations.
func (l *Language) IsBody(nodeType string) bool {
	_, ok := l.BodyTypes[nodeType]
	return ok
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
