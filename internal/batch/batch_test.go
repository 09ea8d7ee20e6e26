package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/phobologic/javascrub/internal/discover"
	"github.com/phobologic/javascrub/internal/model"
	"github.com/phobologic/javascrub/internal/parse"
	"github.com/phobologic/javascrub/internal/scrub"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, rel, content string) discover.FileEntry {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return discover.FileEntry{Path: rel, Language: "java"}
}

func newScrubber(t *testing.T) *scrub.Scrubber {
	t.Helper()
	s, err := scrub.New(scrub.Options{
		Exclude:   []string{"Internal"},
		Renames:   []model.RenameRule{{From: "com.acme", To: "org.acme"}},
		EmptyFile: scrub.EmptyFileDelete,
	})
	require.NoError(t, err)
	return s
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	files := []discover.FileEntry{
		writeFile(t, root, "com/acme/A.java", "package com.acme;\nclass A {}\n"),
		writeFile(t, root, "com/acme/Bad.java", "package com.acme;\nclass Bad {\n  int x = ;\n}\n"),
		writeFile(t, root, "com/acme/Secret.java", "package com.acme;\n@Internal\nclass Secret {}\n"),
		writeFile(t, root, "Plain.java", "class Plain {}\n"),
	}

	core, logs := observer.New(zap.DebugLevel)
	var mu sync.Mutex
	written := map[string]string{}
	report, err := Run(context.Background(), newScrubber(t), root, files, Options{
		Workers: 2,
		Logger:  zap.New(core),
		Emit: func(res *scrub.Result) error {
			mu.Lock()
			defer mu.Unlock()
			written[res.Path] = string(res.Content)
			return nil
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Files, len(files))

	// Results keep input order.
	for i, f := range files {
		assert.Equal(t, f.Path, report.Files[i].Path)
	}

	a := report.Files[0]
	assert.Equal(t, model.StatusChanged, a.Status)
	assert.Equal(t, filepath.Join("org", "acme", "A.java"), a.Output)
	assert.Equal(t, "package org.acme;\nclass A {}\n", written[a.Output])

	bad := report.Files[1]
	assert.Equal(t, model.StatusFailed, bad.Status)
	var perr *parse.ParseError
	assert.True(t, errors.As(bad.Err, &perr))

	assert.Equal(t, model.StatusRemoved, report.Files[2].Status)
	assert.Equal(t, model.StatusUnchanged, report.Files[3].Status)

	assert.Len(t, written, 2)
	assert.True(t, report.Failed())
	assert.Equal(t, 1, logs.FilterMessage("scrub failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("scrub complete").Len())
}

func TestRunCollisions(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	files := []discover.FileEntry{
		writeFile(t, root, "com/acme/A.java", "package com.acme;\nclass A {}\n"),
		writeFile(t, root, "org/acme/A.java", "package org.acme;\nclass A {}\n"),
		writeFile(t, root, "com/acme/B.java", "package com.acme;\nclass B {}\n"),
	}

	report, err := Run(context.Background(), newScrubber(t), root, files, Options{})
	require.NoError(t, err)

	for _, i := range []int{0, 1} {
		var cerr *CollisionError
		require.True(t, errors.As(report.Files[i].Err, &cerr), report.Files[i].Path)
		assert.Equal(t, filepath.Join("org", "acme", "A.java"), cerr.Output)
	}
	assert.Equal(t, files[1].Path, report.Files[0].Err.(*CollisionError).Other)
	assert.Equal(t, model.StatusChanged, report.Files[2].Status)
}

func TestRunWritesOutputTree(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	out := t.TempDir()
	files := []discover.FileEntry{
		writeFile(t, root, "src/com/acme/A.java", "package com.acme;\nclass A {}\n"),
	}

	var progress bytes.Buffer
	report, err := Run(context.Background(), newScrubber(t), root, files, Options{
		Emit:     WriteTo(out),
		Progress: &progress,
	})
	require.NoError(t, err)
	assert.False(t, report.Failed())

	got, err := os.ReadFile(filepath.Join(out, "src", "org", "acme", "A.java"))
	require.NoError(t, err)
	assert.Equal(t, "package org.acme;\nclass A {}\n", string(got))
	assert.NotEmpty(t, progress.String())
}

func TestRunEmitFailure(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	files := []discover.FileEntry{writeFile(t, root, "A.java", "class A {}\n")}

	report, err := Run(context.Background(), newScrubber(t), root, files, Options{
		Emit: func(*scrub.Result) error { return errors.New("disk full") },
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, report.Files[0].Status)
	assert.ErrorContains(t, report.Files[0].Err, "disk full")
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()
	files := []discover.FileEntry{{Path: "Gone.java", Language: "java"}}
	report, err := Run(context.Background(), newScrubber(t), t.TempDir(), files, Options{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, report.Files[0].Status)
	assert.ErrorIs(t, report.Files[0].Err, os.ErrNotExist)
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	var files []discover.FileEntry
	for _, name := range []string{"A.java", "B.java", "C.java"} {
		files = append(files, writeFile(t, root, name, "class X {}\n"))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, newScrubber(t), root, files, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()
	report, err := Run(context.Background(), newScrubber(t), t.TempDir(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.False(t, report.Failed())
}
