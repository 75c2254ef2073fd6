package model

import "fmt"

// Validate checks the structural invariants of a restore payload:
// lists present, list IDs unique and non-empty, and item IDs unique and
// non-empty within each list. The selection is not checked; a selection
// naming no list is a state the store itself can reach.
func (d AppData) Validate() error {
	if d.Lists == nil {
		return NewValidationError("lists", "must be a list")
	}

	listIDs := make(map[string]bool, len(d.Lists))
	for i, l := range d.Lists {
		field := fmt.Sprintf("lists[%d]", i)
		if l.ID == "" {
			return NewValidationError(field+".id", "must not be empty")
		}
		if listIDs[l.ID] {
			return NewValidationError(field+".id", fmt.Sprintf("duplicate list id %q", l.ID))
		}
		listIDs[l.ID] = true

		itemIDs := make(map[string]bool, len(l.Items))
		for j, it := range l.Items {
			itemField := fmt.Sprintf("%s.items[%d].id", field, j)
			if it.ID == "" {
				return NewValidationError(itemField, "must not be empty")
			}
			if itemIDs[it.ID] {
				return NewValidationError(itemField, fmt.Sprintf("duplicate item id %q", it.ID))
			}
			itemIDs[it.ID] = true
		}
	}

	return nil
}
