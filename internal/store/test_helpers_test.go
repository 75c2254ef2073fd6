package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/roulette/internal/model"
)

// createTestSQLite opens a fresh SQLite repository in a temp dir.
func createTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	r, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// sampleData returns AppData exercising every field.
func sampleData() model.AppData {
	return model.AppData{
		Lists: []model.List{
			{
				ID:   "list-b",
				Name: "Lunch",
				Items: []model.Item{
					{ID: "i3", Text: "Pizza"},
					{ID: "i1", Text: `Say "cheese"`},
					{ID: "i2", Text: "Pizza"},
				},
			},
			{ID: "list-a", Name: "Empty", Items: []model.Item{}},
		},
		Settings: model.Settings{
			SelectedListID:           model.StringPtr("list-b"),
			AllowDuplicatesInSession: false,
			SoundEnabled:             false,
		},
	}
}

func getTableColumns(t *testing.T, r *SQLiteRepository, table string) []string {
	t.Helper()
	rows, err := r.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table info %s: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
