package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path. name must be relative to dir.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		t.Fatalf("WriteFile: %q must be a local relative path", name)
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}
