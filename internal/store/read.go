package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/roulette/internal/model"
)

// Load returns the stored lists and settings.
//
// Lists and items come back in saved order. A missing settings row, or NULL
// settings columns, are backfilled from model.DefaultSettings(). Any read
// failure is logged and yields model.EmptyAppData().
func (r *SQLiteRepository) Load(ctx context.Context) model.AppData {
	data, err := r.load(ctx)
	if err != nil {
		slog.Error("failed to load data from storage",
			"backend", BackendSQLite,
			"error", err,
		)
		return model.EmptyAppData()
	}
	return data
}

func (r *SQLiteRepository) load(ctx context.Context) (model.AppData, error) {
	lists, err := r.readLists(ctx)
	if err != nil {
		return model.AppData{}, err
	}

	settings, err := r.readSettings(ctx)
	if err != nil {
		return model.AppData{}, err
	}

	return model.AppData{Lists: lists, Settings: settings}, nil
}

// readLists returns all lists with their items, ordered by position.
// Returns an empty slice (not nil) when nothing is stored.
//
// The two queries run one after the other: the pool holds a single
// connection, so the list rows must be closed before items are queried.
func (r *SQLiteRepository) readLists(ctx context.Context) ([]model.List, error) {
	lists, err := r.readListRows(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(lists))
	for i, l := range lists {
		index[l.ID] = i
	}

	if err := r.readItemRows(ctx, func(listID string, it model.Item) {
		if i, ok := index[listID]; ok {
			lists[i].Items = append(lists[i].Items, it)
		}
	}); err != nil {
		return nil, err
	}

	return lists, nil
}

func (r *SQLiteRepository) readListRows(ctx context.Context) ([]model.List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name
		FROM lists
		ORDER BY position ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		l := model.List{Items: []model.Item{}}
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

func (r *SQLiteRepository) readItemRows(ctx context.Context, fn func(listID string, it model.Item)) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT list_id, id, text
		FROM items
		ORDER BY list_id COLLATE BINARY ASC, position ASC
	`)
	if err != nil {
		return fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var listID string
		var it model.Item
		if err := rows.Scan(&listID, &it.ID, &it.Text); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		fn(listID, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate items: %w", err)
	}
	return nil
}

// readSettings returns the settings row merged over the defaults.
func (r *SQLiteRepository) readSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	var (
		selected        sql.NullString
		allowDuplicates sql.NullInt64
		soundEnabled    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT selected_list_id, allow_duplicates_in_session, sound_enabled
		FROM settings
		WHERE key = ?
	`, StorageKey).Scan(&selected, &allowDuplicates, &soundEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}

	if selected.Valid {
		settings.SelectedListID = model.StringPtr(selected.String)
	}
	if allowDuplicates.Valid {
		settings.AllowDuplicatesInSession = allowDuplicates.Int64 != 0
	}
	if soundEnabled.Valid {
		settings.SoundEnabled = soundEnabled.Int64 != 0
	}

	return settings, nil
}
