package rename

import (
	"regexp"

	"github.com/phobologic/javascrub/internal/model"
)

// docTag matches the Javadoc tags whose argument is a reference.
var docTag = regexp.MustCompile(`\{@(?:link|linkplain|value)\b|@(?:see|throws|exception)\b`)

// scanText appends a candidate for every dotted or slashed name in text.
// base is the offset of text in the file.
//
// A candidate starts at a name character that does not continue a longer
// path. A single leading '/' is allowed so that absolute resource paths
// such as "/com/example/res.txt" are recognized.
func scanText(text string, base int, kind model.ContextKind, out []model.Occurrence) []model.Occurrence {
	for i := 0; i < len(text); {
		if !isNameByte(text[i]) || !candidateStart(text, i) {
			i++
			continue
		}
		j := i
		for j < len(text) && isPathByte(text[j]) {
			j++
		}
		word := text[i:j]
		out = append(out, model.Occurrence{
			Kind: kind,
			Span: model.Span{Start: base + i, End: base + j},
			Text: word,
			Sep:  separator(word),
		})
		i = j
	}
	return out
}

func candidateStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev := text[i-1]
	if prev == '/' {
		return i == 1 || !isPathByte(text[i-2])
	}
	return !isPathByte(prev)
}

// separator returns the first of '.' or '/' in word, defaulting to '.'.
func separator(word string) byte {
	for i := 0; i < len(word); i++ {
		if word[i] == '.' || word[i] == '/' {
			return word[i]
		}
	}
	return '.'
}

// scanJavadoc appends candidates found in the reference arguments of the
// Javadoc comment text starting at base.
func scanJavadoc(text string, base int, out []model.Occurrence) []model.Occurrence {
	for _, loc := range docTag.FindAllStringIndex(text, -1) {
		start := skipContinuation(text, loc[1])
		if start >= len(text) || text[start] == '<' || text[start] == '"' {
			continue
		}
		end := referenceEnd(text, start)
		out = scanText(text[start:end], base+start, model.JavadocTag, out)
	}
	return out
}

// skipContinuation skips whitespace and the leading '*' of continuation
// lines.
func skipContinuation(text string, pos int) int {
	for pos < len(text) {
		switch c := text[pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			pos++
		case c == '*' && !(pos+1 < len(text) && text[pos+1] == '/') && lineLeader(text, pos):
			pos++
		default:
			return pos
		}
	}
	return pos
}

// lineLeader reports whether only blanks and '*' precede pos on its line.
func lineLeader(text string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case '\n':
			return true
		case ' ', '\t', '*', '\r':
		default:
			return false
		}
	}
	return true
}

// referenceEnd returns the end of a reference starting at pos: the first
// whitespace outside parentheses, a closing brace, or the comment end.
func referenceEnd(text string, pos int) int {
	depth := 0
	for i := pos; i < len(text); i++ {
		switch c := text[i]; c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '}':
			if depth == 0 {
				return i
			}
		case ' ', '\t', '\r', '\n':
			if depth == 0 {
				return i
			}
		case '*':
			if i+1 < len(text) && text[i+1] == '/' {
				return i
			}
		}
	}
	return len(text)
}
