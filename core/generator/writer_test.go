package generator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tristendillon/barrel/core/models"
)

func TestWriteBarrelOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.ts")
	if err := os.WriteFile(path, []byte("old content that is longer"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteBarrel(path, "new"); err != nil {
		t.Fatalf("WriteBarrel() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWriteBarrelMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "index.ts")
	err := WriteBarrel(path, "x")
	var writeErr *models.WriteError
	if !errors.As(err, &writeErr) || writeErr.Path != path {
		t.Fatalf("WriteBarrel() error = %v, want *models.WriteError for %s", err, path)
	}
}
