package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// FileStore keeps the alert document in one JSON file, the way the
// service originally ran. Writes go through a temp file and rename so a
// crash mid-write never leaves a truncated document behind.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON file at path. The
// file does not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the raw file contents. A missing file is not an error:
// it reads as "never written".
func (s *FileStore) Read(ctx context.Context) (json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return raw, nil
}

// Write replaces the document atomically.
func (s *FileStore) Write(ctx context.Context, rec model.AlertRecord) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding alert record: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".alert-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s to %s: %w", tmpName, s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
