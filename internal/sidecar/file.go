package sidecar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/JonMunkholm/matchboard/internal/logging"
)

// FileStore keeps the header labels in a JSON file.
type FileStore struct {
	path string
}

var _ core.HeaderStore = (*FileStore)(nil)

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveHeaders writes the labels through a temporary file and a rename, so
// readers never see a partial document.
func (s *FileStore) SaveHeaders(ctx context.Context, labels []string) error {
	data, err := encode(labels)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // fails harmlessly after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write headers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace headers file: %w", err)
	}

	logging.FromContext(ctx).Debug("headers saved", "path", s.path, "count", len(labels))
	return nil
}

// LoadHeaders reads the labels. A missing or corrupt file yields none.
func (s *FileStore) LoadHeaders(ctx context.Context) []string {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}
	}
	if err != nil {
		logging.FromContext(ctx).Warn("headers file unreadable", "path", s.path, "error", err)
		return []string{}
	}

	labels, err := decode(data)
	if err != nil {
		logging.WithFields(ctx, "path", s.path).Warn("headers file corrupt", "error", err)
		return []string{}
	}
	return labels
}
