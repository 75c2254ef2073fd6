package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/roulette/internal/model"
)

// FileRepository stores roulette data as a single JSON document on disk.
type FileRepository struct {
	path string
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository returns a repository backed by the JSON file at path.
// The file and its directory are created on first Save.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the file path used by this repository.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the document. A missing file yields model.EmptyAppData()
// silently; an unreadable or malformed one is logged first.
func (r *FileRepository) Load(_ context.Context) model.AppData {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.EmptyAppData()
	}
	if err != nil {
		slog.Error("failed to load data from storage", "backend", BackendJSON, "path", r.path, "error", err)
		return model.EmptyAppData()
	}

	data, err := unmarshalAppData(b)
	if err != nil {
		slog.Error("failed to load data from storage", "backend", BackendJSON, "path", r.path, "error", err)
		return model.EmptyAppData()
	}
	return data
}

// Save writes the document via a temp file, then atomically replaces the target.
func (r *FileRepository) Save(_ context.Context, data model.AppData) error {
	b, err := marshalAppData(data)
	if err != nil {
		return &PersistenceError{Op: "save", Backend: BackendJSON, Err: err}
	}
	if err := writeFileAtomic(r.path, b, 0o600); err != nil {
		return &PersistenceError{Op: "save", Backend: BackendJSON, Err: err}
	}
	return nil
}

// Clear removes the document. A missing file is not an error.
func (r *FileRepository) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{Op: "clear", Backend: BackendJSON, Err: err}
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (r *FileRepository) Close() error {
	return nil
}

// writeFileAtomic writes b via a temp file in the target directory, then renames it over path.
func writeFileAtomic(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
