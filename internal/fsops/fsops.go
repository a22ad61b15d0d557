// Package fsops provides the filesystem primitives used by edit sessions:
// whole-file read/write, deletion, and ancestor-directory creation with an
// exact record of what was created so a revert can undo it.
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads the whole file at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path atomically via a temp file + os.Rename.
// The parent directory must already exist.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Delete removes the file at path. Missing files are not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// RemoveDir removes a single (empty) directory.
func RemoveDir(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing directory %s: %w", path, err)
	}
	return nil
}

// CreateDirectoriesForFile creates every missing ancestor directory of
// filePath and returns exactly the directories it created, shallowest first.
// Pre-existing ancestors are never included, so reversing the returned slice
// gives a safe deepest-first removal order for rollback.
func CreateDirectoriesForFile(filePath string) ([]string, error) {
	dir := filepath.Dir(filePath)

	// Walk up until an existing ancestor is found, collecting the missing ones.
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("creating directories for %s: %w", filePath, err)
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	// missing is deepest-first; create shallowest-first and record as we go,
	// so the record stays accurate even if a later mkdir fails.
	created := make([]string, 0, len(missing))
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil {
			return created, fmt.Errorf("creating directories for %s: %w", filePath, err)
		}
		created = append(created, missing[i])
	}
	return created, nil
}
