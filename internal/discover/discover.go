// Package discover finds Java source files under an input root.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/javascrub/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to root
	Language string
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	".gradle":      {},
	".idea":        {},
	"build":        {},
	"target":       {},
	"out":          {},
	"bazel-bin":    {},
	"bazel-out":    {},
}

type pattern struct {
	text string
	glob glob.Glob
}

// Ignore is a set of glob patterns matched against slash-separated
// relative paths.
type Ignore struct {
	patterns []pattern
}

// CompileIgnore compiles patterns such as "**/generated/**".
func CompileIgnore(patterns []string) (*Ignore, error) {
	ig := &Ignore{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		ig.patterns = append(ig.patterns, pattern{text: p, glob: g})
	}
	return ig, nil
}

// Match reports whether rel, or any directory containing it, is ignored.
func (ig *Ignore) Match(rel string) bool {
	if ig == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range ig.patterns {
		if p.glob.Match(rel) || p.glob.Match(rel+"/**") {
			return true
		}
		// "**/x" also matches x at the root.
		if !strings.Contains(rel, "/") && strings.HasPrefix(p.text, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(p.text, "**/"), '/'); err == nil && g.Match(rel) {
				return true
			}
		}
	}
	return false
}

// Files discovers Java source files under root, skipping build output,
// hidden directories, files excluded by git or .gitignore, and paths
// matched by ig.
func Files(root string, ig *Ignore) ([]FileEntry, error) {
	sel := newSelector(root, ig)
	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		langName := lang.ForExtension(filepath.Ext(name))
		if langName == "" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || sel.excluded(rel) {
			return nil
		}
		results = append(results, FileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func skipDir(name string) bool {
	_, skip := skipDirs[name]
	return skip || strings.HasPrefix(name, ".")
}

// selector decides which candidate files are in scope. Inside a git
// checkout the tracked and untracked-but-not-ignored files are used;
// elsewhere the root .gitignore applies.
type selector struct {
	tracked map[string]struct{}
	gi      *ignore.GitIgnore
	ig      *Ignore
}

func newSelector(root string, ig *Ignore) *selector {
	s := &selector{tracked: gitLsFiles(root), ig: ig}
	if s.tracked == nil {
		s.gi = loadGitignore(root)
	}
	return s
}

func (s *selector) excluded(rel string) bool {
	if s.tracked != nil {
		if _, ok := s.tracked[filepath.ToSlash(rel)]; !ok {
			return true
		}
	} else if s.gi != nil && s.gi.MatchesPath(rel) {
		return true
	}
	return s.ig.Match(rel)
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
