package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/roulette/internal/model"
)

// StorageKey names the persisted document in backends that key it.
const StorageKey = "mini-roulette-data"

// Repository is the durable load/save/clear contract for model.AppData.
type Repository interface {
	// Load returns the stored data, or model.EmptyAppData() if nothing usable is stored.
	Load(ctx context.Context) model.AppData

	// Save replaces the stored data.
	Save(ctx context.Context, data model.AppData) error

	// Clear removes the stored data. Clearing empty storage is not an error.
	Clear(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}

// Backend names a Repository implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMemory Backend = "memory"
)

// ValidBackends lists the accepted backend names.
var ValidBackends = []Backend{BackendSQLite, BackendJSON, BackendMemory}

// Open creates the repository for backend at path.
// path is ignored for BackendMemory.
func Open(backend Backend, path string) (Repository, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendJSON:
		return NewFileRepository(path), nil
	case BackendMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q: must be one of %v", backend, ValidBackends)
	}
}

// PersistenceError reports a durable-storage failure.
// It is logged by callers and never surfaced as a mutation failure.
type PersistenceError struct {
	// Op is "load", "save" or "clear".
	Op string

	// Backend identifies the failing repository.
	Backend Backend

	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError returns true if err is or wraps a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
