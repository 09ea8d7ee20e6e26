package parse

import "fmt"

// ParseError reports a file that is not syntactically valid Java.
// Line and Column are 1-based; Column counts bytes.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Near    string // source text of the offending node, truncated
	Missing string // node type tree-sitter had to invent, if any
}

func (e *ParseError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error: missing %s", e.Path, e.Line, e.Column, e.Missing)
	}
	if e.Near == "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Path, e.Line, e.Column, e.Near)
}
