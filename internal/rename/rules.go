package rename

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phobologic/javascrub/internal/model"
)

// ErrInvalidRule is wrapped by every rule validation failure.
var ErrInvalidRule = errors.New("invalid rename rule")

type rule struct {
	from, to         string
	fromPath, toPath string
}

// Rules is an immutable set of rename rules, safe for concurrent use.
type Rules struct {
	rules []rule // longest source prefix first
}

// NewRules validates rs and returns a rule set.
func NewRules(rs []model.RenameRule) (*Rules, error) {
	seen := make(map[string]bool, len(rs))
	r := &Rules{}
	for _, in := range rs {
		if err := validName(in.From); err != nil {
			return nil, fmt.Errorf("%w: source %q: %v", ErrInvalidRule, in.From, err)
		}
		if err := validName(in.To); err != nil {
			return nil, fmt.Errorf("%w: target %q: %v", ErrInvalidRule, in.To, err)
		}
		if seen[in.From] {
			return nil, fmt.Errorf("%w: duplicate source %q", ErrInvalidRule, in.From)
		}
		seen[in.From] = true
		r.rules = append(r.rules, rule{
			from:     in.From,
			to:       in.To,
			fromPath: strings.ReplaceAll(in.From, ".", "/"),
			toPath:   strings.ReplaceAll(in.To, ".", "/"),
		})
	}
	sort.SliceStable(r.rules, func(i, j int) bool {
		return len(r.rules[i].from) > len(r.rules[j].from)
	})
	return r, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int { return len(r.rules) }

// Match finds the longest source prefix that starts candidate and ends on
// a segment boundary. sep selects the dotted ('.') or slashed ('/') form;
// the returned prefixes use the same form.
func (r *Rules) Match(candidate string, sep byte) (from, to string, ok bool) {
	for _, rl := range r.rules {
		f, t := rl.from, rl.to
		if sep == '/' {
			f, t = rl.fromPath, rl.toPath
		}
		if !strings.HasPrefix(candidate, f) {
			continue
		}
		if len(candidate) == len(f) || atBoundary(candidate[len(f)], sep) {
			return f, t, true
		}
	}
	return "", "", false
}

// RewritePath renames the package directories of a relative file path.
// The first path segment at which a rule matches is rewritten.
func (r *Rules) RewritePath(path string) string {
	if len(r.rules) == 0 {
		return path
	}
	slashed := filepath.ToSlash(path)
	for i := 0; i < len(slashed); {
		if from, to, ok := r.Match(slashed[i:], '/'); ok {
			return filepath.FromSlash(slashed[:i] + to + slashed[i+len(from):])
		}
		next := strings.IndexByte(slashed[i:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return path
}

// atBoundary reports whether c may follow a complete prefix.
func atBoundary(c, sep byte) bool {
	return c == sep || !isPathByte(c)
}

func validName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return errors.New("empty segment")
		}
		for i := 0; i < len(seg); i++ {
			c := seg[i]
			if !isNameByte(c) || (i == 0 && c >= '0' && c <= '9') {
				return fmt.Errorf("invalid character %q", c)
			}
		}
	}
	return nil
}

// isNameByte reports whether c can appear in a Java identifier. Bytes of
// multi-byte UTF-8 sequences count as name bytes.
func isNameByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func isPathByte(c byte) bool {
	return isNameByte(c) || c == '.' || c == '/' || c == '-'
}
