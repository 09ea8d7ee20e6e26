package lang

import (
	"github.com/smacker/go-tree-sitter/java"

	"github.com/phobologic/javascrub/internal/model"
)

// Java is the registered Java language.
var Java *Language

func init() {
	Java = &Language{
		Name:       "java",
		Extensions: []string{".java"},
		lang:       java.GetLanguage(),
		DeclarationTypes: map[string]model.DeclKind{
			"class_declaration":                   model.Type,
			"interface_declaration":               model.Type,
			"enum_declaration":                    model.Type,
			"record_declaration":                  model.Type,
			"annotation_type_declaration":         model.Type,
			"method_declaration":                  model.Method,
			"constructor_declaration":             model.Method,
			"compact_constructor_declaration":     model.Method,
			"annotation_type_element_declaration": model.Method,
			"field_declaration":                   model.Field,
			"constant_declaration":                model.Field,
			"enum_constant":                       model.Field,
		},
		BodyTypes: map[string]struct{}{
			"class_body":             {},
			"interface_body":         {},
			"enum_body":              {},
			"enum_body_declarations": {},
			"annotation_type_body":   {},
		},
	}
	Languages["java"] = Java
}

// IsComment reports whether a Java node type is a comment. Older grammars
// use a single "comment" type.
func IsComment(nodeType string) bool {
	switch nodeType {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}
