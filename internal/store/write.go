package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/roulette/internal/model"
)

// Save replaces every stored list, item and the settings row in one transaction.
// On failure the transaction is rolled back and the previous data is kept.
func (r *SQLiteRepository) Save(ctx context.Context, data model.AppData) error {
	if err := r.save(ctx, data); err != nil {
		return &PersistenceError{Op: "save", Backend: BackendSQLite, Err: err}
	}
	return nil
}

func (r *SQLiteRepository) save(ctx context.Context, data model.AppData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := clearTables(ctx, tx); err != nil {
		return err
	}

	for lpos, l := range data.Lists {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lists (id, name, position)
			VALUES (?, ?, ?)
		`, l.ID, l.Name, lpos); err != nil {
			return fmt.Errorf("insert list %s: %w", l.ID, err)
		}

		for ipos, it := range l.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO items (list_id, id, text, position)
				VALUES (?, ?, ?, ?)
			`, l.ID, it.ID, it.Text, ipos); err != nil {
				return fmt.Errorf("insert item %s/%s: %w", l.ID, it.ID, err)
			}
		}
	}

	var selected sql.NullString
	if data.Settings.SelectedListID != nil {
		selected = sql.NullString{String: *data.Settings.SelectedListID, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, selected_list_id, allow_duplicates_in_session, sound_enabled)
		VALUES (?, ?, ?, ?)
	`,
		StorageKey,
		selected,
		boolToInt(data.Settings.AllowDuplicatesInSession),
		boolToInt(data.Settings.SoundEnabled),
	); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Clear removes all stored lists, items and settings.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "clear", Backend: BackendSQLite, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return &PersistenceError{Op: "clear", Backend: BackendSQLite, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "clear", Backend: BackendSQLite, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// clearTables deletes every row. Items go first so the foreign key never dangles.
func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"items", "lists", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
