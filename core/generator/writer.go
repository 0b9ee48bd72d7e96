package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tristendillon/barrel/core/models"
)

// WriteBarrel replaces path with text. The content goes to a temporary file
// in the same directory first, so a failed write never leaves a truncated
// barrel behind.
func WriteBarrel(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &models.WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &models.WriteError{Path: path, Err: fmt.Errorf("failed to set permissions: %w", err)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &models.WriteError{Path: path, Err: err}
	}
	return nil
}
