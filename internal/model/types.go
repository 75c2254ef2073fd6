package model

// Item is a single entry of a list. Identity is ID; Text may repeat.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// List is a named, ordered collection of items.
// Item IDs are unique within a list.
type List struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	items := make([]Item, len(l.Items))
	copy(items, l.Items)
	l.Items = items
	return l
}

// HasItem reports whether the list contains an item with the given ID.
func (l List) HasItem(itemID string) bool {
	for _, it := range l.Items {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// Settings holds user preferences.
//
// SelectedListID is nil when no list is selected.
type Settings struct {
	SelectedListID           *string `json:"selectedListId"`
	AllowDuplicatesInSession bool    `json:"allowDuplicatesInSession"`
	SoundEnabled             bool    `json:"soundEnabled"`
}

// DefaultSettings returns the settings used when nothing is stored, and the
// values backfilled into stored settings that predate a field.
func DefaultSettings() Settings {
	return Settings{
		SelectedListID:           nil,
		AllowDuplicatesInSession: true,
		SoundEnabled:             true,
	}
}

// Selected returns the selected list ID, or "" when none is selected.
func (s Settings) Selected() string {
	if s.SelectedListID == nil {
		return ""
	}
	return *s.SelectedListID
}

// Clone returns a copy that shares no pointers with s.
func (s Settings) Clone() Settings {
	if s.SelectedListID != nil {
		id := *s.SelectedListID
		s.SelectedListID = &id
	}
	return s
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// AppData is the persisted unit: every list plus the settings.
type AppData struct {
	Lists    []List   `json:"lists"`
	Settings Settings `json:"settings"`
}

// EmptyAppData returns the value used when nothing is stored.
func EmptyAppData() AppData {
	return AppData{
		Lists:    []List{},
		Settings: DefaultSettings(),
	}
}

// Clone returns a deep copy of the data.
// A nil Lists slice is normalised to an empty one.
func (d AppData) Clone() AppData {
	lists := make([]List, len(d.Lists))
	for i, l := range d.Lists {
		lists[i] = l.Clone()
	}
	return AppData{
		Lists:    lists,
		Settings: d.Settings.Clone(),
	}
}

// FindList returns the list with the given ID.
func (d AppData) FindList(id string) (List, bool) {
	for _, l := range d.Lists {
		if l.ID == id {
			return l, true
		}
	}
	return List{}, false
}

// HistoryEntry is an item that won a spin during the current session.
// Entries are value copies so later list edits never rewrite history.
type HistoryEntry = Item

// CloneItems returns a copy of items; nil stays nil.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
