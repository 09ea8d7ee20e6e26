package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phobologic/javascrub/internal/scrub"
)

// WriteTo returns an EmitFunc that writes each result to its output path
// under dir, creating directories as needed.
func WriteTo(dir string) EmitFunc {
	return func(res *scrub.Result) error {
		path := filepath.Join(dir, res.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		return os.WriteFile(path, res.Content, 0o644)
	}
}
