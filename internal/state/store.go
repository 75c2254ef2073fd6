package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/store"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("state store closed")

// Store owns lists, settings and session history.
//
// Thread-safety model:
//   - every operation runs its read-modify-write and its Save under one mutex
//   - subscribers are called after the mutex is released, on the mutating
//     goroutine, so they may read or mutate the store themselves
//   - subscribers see snapshots in increasing Version order; a snapshot that
//     loses a delivery race to a newer one is skipped, never delivered late
type Store struct {
	mu      sync.Mutex
	repo    store.Repository
	logger  *slog.Logger
	data    model.AppData
	history []model.HistoryEntry
	version uint64
	closed  bool

	subMu     sync.Mutex
	subs      map[int]func(Snapshot)
	nextSubID int
	delivered uint64
}

// Option allows configuration of the store.
type Option func(*Store)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New loads the persisted data from repo and returns a store over it.
// History starts empty.
func New(ctx context.Context, repo store.Repository, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		logger:  slog.Default(),
		history: []model.HistoryEntry{},
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = repo.Load(ctx).Clone()
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every published snapshot.
// The returned function unregisters it; calling it twice is harmless.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close drops all subscribers. Later mutations return ErrClosed.
// The repository is not closed; it belongs to the caller.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
}

// AddList appends list. IDs are not checked for uniqueness here; callers
// mint fresh IDs.
func (s *Store) AddList(ctx context.Context, list model.List) error {
	return s.mutateData(ctx, "add list", func(d *model.AppData) bool {
		l := list.Clone()
		if l.Items == nil {
			l.Items = []model.Item{}
		}
		d.Lists = append(d.Lists, l)
		return true
	})
}

// UpdateList replaces the list whose ID matches list.ID.
// Unknown IDs are a no-op.
func (s *Store) UpdateList(ctx context.Context, list model.List) error {
	return s.mutateData(ctx, "update list", func(d *model.AppData) bool {
		i := indexOfList(d.Lists, list.ID)
		if i < 0 {
			return false
		}
		l := list.Clone()
		if l.Items == nil {
			l.Items = []model.Item{}
		}
		d.Lists[i] = l
		return true
	})
}

// DeleteList removes the list with the given ID and clears the selection
// if it pointed at it. Unknown IDs are a no-op.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	return s.mutateData(ctx, "delete list", func(d *model.AppData) bool {
		i := indexOfList(d.Lists, id)
		if i < 0 {
			return false
		}
		d.Lists = append(d.Lists[:i], d.Lists[i+1:]...)
		if d.Settings.Selected() == id {
			d.Settings.SelectedListID = nil
		}
		return true
	})
}

// SelectList sets the selection. An empty id clears it.
// The ID is not checked against the lists.
func (s *Store) SelectList(ctx context.Context, id string) error {
	return s.mutateData(ctx, "select list", func(d *model.AppData) bool {
		if id == "" {
			d.Settings.SelectedListID = nil
		} else {
			d.Settings.SelectedListID = model.StringPtr(id)
		}
		return true
	})
}

// UpdateSettings merges patch into the settings. An empty patch is a no-op.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	return s.mutateData(ctx, "update settings", func(d *model.AppData) bool {
		if patch.IsEmpty() {
			return false
		}
		d.Settings = patch.apply(d.Settings)
		return true
	})
}

// AddItemToList appends item to the list with the given ID.
// Unknown lists are a no-op.
func (s *Store) AddItemToList(ctx context.Context, listID string, item model.Item) error {
	return s.mutateData(ctx, "add item", func(d *model.AppData) bool {
		i := indexOfList(d.Lists, listID)
		if i < 0 {
			return false
		}
		d.Lists[i].Items = append(d.Lists[i].Items, item)
		return true
	})
}

// AddItemsToList appends items, in order, with a single save.
// Unknown lists and empty item slices are a no-op.
func (s *Store) AddItemsToList(ctx context.Context, listID string, items []model.Item) error {
	return s.mutateData(ctx, "add items", func(d *model.AppData) bool {
		i := indexOfList(d.Lists, listID)
		if i < 0 || len(items) == 0 {
			return false
		}
		d.Lists[i].Items = append(d.Lists[i].Items, items...)
		return true
	})
}

// RemoveItemFromList removes the item from the list.
// Unknown lists or items are a no-op.
func (s *Store) RemoveItemFromList(ctx context.Context, listID, itemID string) error {
	return s.mutateData(ctx, "remove item", func(d *model.AppData) bool {
		i := indexOfList(d.Lists, listID)
		if i < 0 {
			return false
		}
		items := d.Lists[i].Items
		for j, it := range items {
			if it.ID == itemID {
				d.Lists[i].Items = append(items[:j], items[j+1:]...)
				return true
			}
		}
		return false
	})
}

// EnsureSelection selects the first list when nothing is selected and at
// least one list exists. It reports whether the selection changed.
func (s *Store) EnsureSelection(ctx context.Context) (bool, error) {
	changed := false
	err := s.mutateData(ctx, "ensure selection", func(d *model.AppData) bool {
		if d.Settings.SelectedListID != nil || len(d.Lists) == 0 {
			return false
		}
		d.Settings.SelectedListID = model.StringPtr(d.Lists[0].ID)
		changed = true
		return true
	})
	return changed, err
}

// ReplaceAll swaps in data wholesale, typically from a restored backup.
// Invalid data is rejected with a *model.ValidationError and nothing changes.
// History is left as is.
func (s *Store) ReplaceAll(ctx context.Context, data model.AppData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	replacement := data.Clone()
	return s.mutateData(ctx, "replace all", func(d *model.AppData) bool {
		*d = replacement
		return true
	})
}

// AddToHistory records a winner, most recent first. History is not persisted.
func (s *Store) AddToHistory(item model.HistoryEntry) error {
	return s.mutateHistory(func(h []model.HistoryEntry) []model.HistoryEntry {
		out := make([]model.HistoryEntry, 0, len(h)+1)
		out = append(out, item)
		return append(out, h...)
	})
}

// ClearHistory empties the session history.
func (s *Store) ClearHistory() error {
	return s.mutateHistory(func([]model.HistoryEntry) []model.HistoryEntry {
		return []model.HistoryEntry{}
	})
}

// mutateData applies fn to a working copy of the data. When fn reports a
// change, the copy is committed, saved once and published.
func (s *Store) mutateData(ctx context.Context, op string, fn func(*model.AppData) bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	next := s.data.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		s.logger.Debug("mutation had no effect", "op", op)
		return nil
	}
	s.data = next
	s.persistLocked(ctx, op)
	snap := s.publishLocked()
	s.mu.Unlock()

	s.deliver(snap)
	return nil
}

func (s *Store) mutateHistory(fn func([]model.HistoryEntry) []model.HistoryEntry) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.history = fn(s.history)
	snap := s.publishLocked()
	s.mu.Unlock()

	s.deliver(snap)
	return nil
}

// persistLocked saves the current data. Failures are logged, not returned.
// Caller must hold s.mu.
func (s *Store) persistLocked(ctx context.Context, op string) {
	if err := s.repo.Save(ctx, s.data.Clone()); err != nil {
		s.logger.Error("persistence failed", "op", op, "error", err)
	}
}

// publishLocked bumps the version and captures a snapshot.
// Caller must hold s.mu.
func (s *Store) publishLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	history := make([]model.HistoryEntry, len(s.history))
	copy(history, s.history)
	data := s.data.Clone()
	return Snapshot{
		Version:  s.version,
		Lists:    data.Lists,
		Settings: data.Settings,
		History:  history,
	}
}

// deliver hands snap to every subscriber unless a newer snapshot has
// already gone out.
func (s *Store) deliver(snap Snapshot) {
	s.subMu.Lock()
	if snap.Version <= s.delivered {
		s.subMu.Unlock()
		return
	}
	s.delivered = snap.Version
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(cloneSnapshot(snap))
	}
}

func cloneSnapshot(snap Snapshot) Snapshot {
	data := snap.Data()
	history := make([]model.HistoryEntry, len(snap.History))
	copy(history, snap.History)
	return Snapshot{Version: snap.Version, Lists: data.Lists, Settings: data.Settings, History: history}
}

func indexOfList(lists []model.List, id string) int {
	for i, l := range lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}
