package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	l := New(&quiet, false)
	l.Debug("hidden")
	l.Info("scrubbed", zap.String("path", "Foo.java"))
	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "info\tscrubbed")
	assert.Contains(t, quiet.String(), `"path": "Foo.java"`)

	var loud bytes.Buffer
	New(&loud, true).Debug("shown")
	assert.Contains(t, loud.String(), "debug\tshown")
}
