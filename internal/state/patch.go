package state

import "github.com/roach88/roulette/internal/model"

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	// SelectedListID changes the selection when non-nil.
	SelectedListID *Selection

	AllowDuplicatesInSession *bool
	SoundEnabled             *bool
}

// Selection is the target of a selection change. A nil ListID selects nothing.
type Selection struct {
	ListID *string
}

// SelectNone returns a Selection that clears the selected list.
func SelectNone() *Selection {
	return &Selection{}
}

// SelectID returns a Selection of the list with the given ID.
func SelectID(id string) *Selection {
	return &Selection{ListID: model.StringPtr(id)}
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool {
	return &b
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.SelectedListID == nil && p.AllowDuplicatesInSession == nil && p.SoundEnabled == nil
}

// apply returns s with the patch merged in.
func (p SettingsPatch) apply(s model.Settings) model.Settings {
	out := s.Clone()
	if p.SelectedListID != nil {
		if p.SelectedListID.ListID == nil {
			out.SelectedListID = nil
		} else {
			out.SelectedListID = model.StringPtr(*p.SelectedListID.ListID)
		}
	}
	if p.AllowDuplicatesInSession != nil {
		out.AllowDuplicatesInSession = *p.AllowDuplicatesInSession
	}
	if p.SoundEnabled != nil {
		out.SoundEnabled = *p.SoundEnabled
	}
	return out
}
