// Package filestore persists tracker and rotation state as small JSON files.
//
// Each save rewrites the whole document through a temp file and rename, so a
// reader sees either the old or the new content.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// Config names the files backing the store.
type Config struct {
	TrackerPath  string
	StatePath    string
	MessagesPath string
}

// Store reads and writes the JSON state files.
type Store struct {
	cfg Config
}

// New returns a Store over the given files. Nothing is created until the
// first save.
func New(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// LoadTracker reads the tracker document. A missing file yields a fresh
// state with every season empty.
func (s *Store) LoadTracker(ctx context.Context) (tracker.State, error) {
	var st tracker.State
	found, err := readJSON(s.cfg.TrackerPath, &st)
	if err != nil {
		return nil, fmt.Errorf("load tracker: %w", err)
	}
	if !found {
		return tracker.NewState(), nil
	}
	return st.Normalize(), nil
}

// SaveTracker writes the tracker document.
func (s *Store) SaveTracker(ctx context.Context, st tracker.State) error {
	if err := writeJSON(s.cfg.TrackerPath, st); err != nil {
		return fmt.Errorf("save tracker: %w", err)
	}
	return nil
}

// LoadRotation reads the rotation index, defaulting to zero.
func (s *Store) LoadRotation(ctx context.Context) (rotation.State, error) {
	var st rotation.State
	if _, err := readJSON(s.cfg.StatePath, &st); err != nil {
		return rotation.State{}, fmt.Errorf("load state: %w", err)
	}
	return st, nil
}

// SaveRotation writes the rotation index.
func (s *Store) SaveRotation(ctx context.Context, st rotation.State) error {
	if err := writeJSON(s.cfg.StatePath, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Messages reads the ordered message list. A missing file is reported as an
// fs.ErrNotExist error.
func (s *Store) Messages(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.cfg.MessagesPath)
	if err != nil {
		return nil, fmt.Errorf("open messages: %w", err)
	}
	defer f.Close()

	messages, err := rotation.DecodeMessages(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(s.cfg.MessagesPath), err)
	}
	return messages, nil
}

// Health checks that the message source is readable.
func (s *Store) Health(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.MessagesPath); err != nil {
		return fmt.Errorf("messages file: %w", err)
	}
	return nil
}

// Close is a no-op; it lets Store satisfy the same interface as the SQLite
// backend.
func (s *Store) Close() error {
	return nil
}

// readJSON decodes path into v. It reports false, with no error, when the
// file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeJSON encodes v and atomically replaces path with it.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, data, 0o644)
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
