// Package model defines core data structures for javascrub.
package model

import "fmt"

// Span is a half-open byte range [Start, End) into a file's original content.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Edit replaces the bytes covered by Span with Text.
type Edit struct {
	Span Span
	Text string
}

// DeclKind indicates the syntactic kind of a declaration.
type DeclKind string

const (
	Type   DeclKind = "type"
	Method DeclKind = "method"
	Field  DeclKind = "field"
)

// Marker is an annotation found on a declaration's modifiers.
type Marker struct {
	Name string // as written, e.g. "Exclude" or "StaticAnnotations.Exclude"
	Span Span
}

// Declaration is a type, method or field declaration with its prunable span.
type Declaration struct {
	Kind     DeclKind
	Name     string
	Node     Span // the declaration node as parsed
	Span     Span // Node widened by attached docs, indentation and line breaks
	Markers  []Marker
	Children []*Declaration
}

// Decision is the include/exclude verdict for a declaration.
type Decision uint8

const (
	Included Decision = iota + 1
	Excluded
)

func (d Decision) String() string {
	switch d {
	case Included:
		return "included"
	case Excluded:
		return "excluded"
	}
	return "undecided"
}

// RenameRule rewrites names starting with From to start with To instead.
// Both are dot-separated.
type RenameRule struct {
	From string
	To   string
}

// ContextKind indicates where a qualified name occurrence was found.
type ContextKind string

const (
	PackageDecl   ContextKind = "package"
	Import        ContextKind = "import"
	StaticImport  ContextKind = "static-import"
	CodeReference ContextKind = "code"
	JavadocTag    ContextKind = "javadoc"
	StringLiteral ContextKind = "string"
	ReflectionArg ContextKind = "reflection"
)

// Occurrence is a candidate qualified name found in source.
type Occurrence struct {
	Kind ContextKind
	Span Span
	Text string // dotted or slashed candidate text
	Sep  byte   // '.' or '/'
}

// FileStatus is the outcome of scrubbing one file.
type FileStatus string

const (
	StatusChanged   FileStatus = "changed"
	StatusUnchanged FileStatus = "unchanged"
	StatusRemoved   FileStatus = "removed"
	StatusFailed    FileStatus = "failed"
)

// FileReport summarizes the outcome for one input file.
type FileReport struct {
	Path     string // relative to the input root
	Output   string // output path, empty when removed or failed
	Status   FileStatus
	Pruned   int
	Stripped int
	Imports  int
	Renamed  int
	Err      error
}

// Report is the outcome of a batch run, one entry per input file in
// input order.
type Report struct {
	Root  string
	Files []FileReport
}

// Count returns the number of files with status s.
func (r *Report) Count(s FileStatus) int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool {
	return r.Count(StatusFailed) > 0
}
