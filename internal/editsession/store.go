package editsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoPending is returned by Load when no pending session exists on disk.
var ErrNoPending = errors.New("no pending edit session")

// Snapshot is the persisted form of an open session: everything revert needs
// after the opening process has exited.
type Snapshot struct {
	ID              string    `json:"id"`
	RelPath         string    `json:"rel_path"`
	AbsPath         string    `json:"abs_path"`
	WorkDir         string    `json:"work_dir"`
	EditType        EditType  `json:"edit_type"`
	Encoding        string    `json:"encoding"`
	OriginalContent string    `json:"original_content"`
	CreatedDirs     []string  `json:"created_dirs,omitempty"`
	DocumentWasOpen bool      `json:"document_was_open,omitempty"`
	StartedAt       time.Time `json:"started_at"`
}

// Store persists the single pending session Snapshot.
type Store interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error) // returns ErrNoPending if none exists
	Delete() error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to pending-edit.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/cline/pending-edit.json or ~/.local/share/cline/pending-edit.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "pending-edit.json")}, nil
}

// dataDir returns the cline-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "cline"), nil
}

// Save marshals snap to JSON and writes it atomically via a temp file +
// os.Rename.
func (d *diskStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to persist edit session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "pending-edit-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist edit session: %w", err)
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
		return fmt.Errorf("failed to persist edit session: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist edit session: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist edit session: %w", err)
	}
	return nil
}

// Load reads and unmarshals the pending session file.
// Returns ErrNoPending if the file does not exist.
func (d *diskStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoPending
		}
		return nil, fmt.Errorf("failed to read edit session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse edit session: %w", err)
	}
	return &snap, nil
}

// Delete removes the pending session file from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete edit session: %w", err)
	}
	return nil
}
