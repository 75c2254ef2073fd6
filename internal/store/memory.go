package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/roulette/internal/model"
)

// MemoryRepository keeps the serialised document in process memory.
//
// Data is marshalled on Save and unmarshalled on Load, exactly like the
// durable backends, so callers never share memory with the repository.
// Used by tests and by ephemeral sessions.
type MemoryRepository struct {
	mu    sync.Mutex
	doc   []byte
	saves int

	// failErr, when set, makes every Save and Clear fail with it.
	failErr error
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load unmarshals the stored document, or returns model.EmptyAppData().
func (r *MemoryRepository) Load(_ context.Context) model.AppData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc == nil {
		return model.EmptyAppData()
	}
	data, err := unmarshalAppData(r.doc)
	if err != nil {
		slog.Error("failed to load data from storage", "backend", BackendMemory, "error", err)
		return model.EmptyAppData()
	}
	return data
}

// Save replaces the stored document.
func (r *MemoryRepository) Save(_ context.Context, data model.AppData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return &PersistenceError{Op: "save", Backend: BackendMemory, Err: r.failErr}
	}
	b, err := marshalAppData(data)
	if err != nil {
		return &PersistenceError{Op: "save", Backend: BackendMemory, Err: err}
	}
	r.doc = b
	r.saves++
	return nil
}

// Clear drops the stored document.
func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return &PersistenceError{Op: "clear", Backend: BackendMemory, Err: r.failErr}
	}
	r.doc = nil
	return nil
}

// Close is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

// SetRaw stores a raw document, bypassing marshalling.
// Lets tests seed legacy or corrupt data.
func (r *MemoryRepository) SetRaw(doc []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = append([]byte(nil), doc...)
}

// Raw returns a copy of the stored document, or nil.
func (r *MemoryRepository) Raw() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	return append([]byte(nil), r.doc...)
}

// Saves returns how many Save calls succeeded.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// FailWith makes subsequent Save and Clear calls fail with err; nil restores normal behaviour.
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}
