package state

import "github.com/roach88/roulette/internal/model"

// Snapshot is a deep copy of the store state at one point in time.
// Nothing in it aliases store memory.
type Snapshot struct {
	// Version increases with every published change.
	Version uint64

	Lists    []model.List
	Settings model.Settings

	// History is the session history, most recent first.
	History []model.HistoryEntry
}

// Data returns the persistable part of the snapshot.
func (s Snapshot) Data() model.AppData {
	return model.AppData{Lists: s.Lists, Settings: s.Settings}.Clone()
}

// SelectedList returns the list named by the selection, if it exists.
func (s Snapshot) SelectedList() (model.List, bool) {
	if s.Settings.SelectedListID == nil {
		return model.List{}, false
	}
	for _, l := range s.Lists {
		if l.ID == *s.Settings.SelectedListID {
			return l.Clone(), true
		}
	}
	return model.List{}, false
}

// FindList returns the list with the given ID.
func (s Snapshot) FindList(id string) (model.List, bool) {
	for _, l := range s.Lists {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return model.List{}, false
}
