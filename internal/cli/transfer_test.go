package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/roulette/internal/model"
)

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, "sqlite")
	env.mustRun("list", "add", "Lunch")
	env.mustRun("item", "add", "Pizza")
	env.mustRun("item", "add", `Say "cheese"`)

	path := filepath.Join(env.dir, "out.csv")
	out := env.mustRun("export", "csv", "-o", path)
	assert.Contains(t, out, "Exported 2 items to "+path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"Pizza\"\n\"Say \"\"cheese\"\"\"", string(b))

	assert.Equal(t, string(b), env.mustRun("export", "csv", "-o", "-"))
}

func TestImportCSV(t *testing.T) {
	env := newTestEnv(t, "json")
	env.mustRun("list", "add", "Existing")

	path := filepath.Join(env.dir, "Movie night.csv")
	require.NoError(t, os.WriteFile(path, []byte("\"Heat\"\r\n\r\nAlien\n\"Say \"\"hi\"\"\"\n"), 0644))

	out := env.mustRun("import", "csv", path)
	assert.Contains(t, out, `Imported 3 items into "Movie night" (id-2)`)

	var detail ListDetail
	decode(t, env.mustRun("--format", "json", "list", "show"), &detail)
	assert.Equal(t, "Movie night", detail.Name, "imported list is selected")
	assert.Equal(t, []model.Item{
		{ID: "id-3", Text: "Heat"},
		{ID: "id-4", Text: "Alien"},
		{ID: "id-5", Text: `Say "hi"`},
	}, detail.Items)
}

func TestImportCSV_Errors(t *testing.T) {
	env := newTestEnv(t, "json")

	r := env.run("import", "csv", filepath.Join(env.dir, "missing.csv"))
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "E005")

	empty := filepath.Join(env.dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("\n \n"), 0644))
	r = env.run("import", "csv", empty)
	require.Error(t, r.err)
	assert.Contains(t, r.stdout, "E209")

	out := env.mustRun("list", "ls")
	assert.Contains(t, out, "No lists yet")
}

func TestBackupRestoreAcrossBackends(t *testing.T) {
	src := newTestEnv(t, "sqlite")
	src.mustRun("list", "add", "Lunch")
	src.mustRun("item", "add", "Pizza")
	src.mustRun("list", "add", "Chores")
	src.mustRun("settings", "--allow-duplicates=false")

	backup := filepath.Join(src.dir, "backup.json")
	out := src.mustRun("backup", "-o", backup)
	assert.Contains(t, out, "Backed up 2 lists (1 item)")

	dst := newTestEnv(t, "json")
	dst.mustRun("list", "add", "Old")

	r := dst.run("restore", backup)
	require.Error(t, r.err)
	assert.Contains(t, r.stdout, "E206")
	assert.Contains(t, dst.mustRun("list", "ls"), "Old", "unconfirmed restore changes nothing")

	out = dst.mustRun("restore", backup, "--yes")
	assert.Contains(t, out, "Restored 2 lists (1 item)")

	ls := dst.mustRun("list", "ls")
	assert.NotContains(t, ls, "Old")
	assert.Contains(t, ls, "  id-1  Lunch (1 item)")
	assert.Contains(t, ls, "* id-3  Chores (0 items)")
	assert.Contains(t, dst.mustRun("settings"), "allow duplicates:  off")

	assert.Equal(t, src.mustRun("backup", "-o", "-"), dst.mustRun("backup", "-o", "-"))
}

func TestRestore_InvalidLeavesDataUntouched(t *testing.T) {
	env := newTestEnv(t, "sqlite")
	env.mustRun("list", "add", "Lunch")

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"foo":1}`), 0644))

	r := env.run("restore", bad, "--yes")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "E205")
	assert.Contains(t, r.stdout, "failed to import data")

	assert.Contains(t, env.mustRun("list", "ls"), "* id-1  Lunch")

	r = env.run("restore", filepath.Join(env.dir, "nope.json"), "--yes")
	require.Error(t, r.err)
	assert.Contains(t, r.stdout, "E005")
}

func TestReset(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			env := newTestEnv(t, backend)
			env.mustRun("list", "add", "Lunch")
			env.mustRun("settings", "--sound=false")

			r := env.run("reset")
			require.Error(t, r.err)
			assert.Contains(t, r.stdout, "E206")

			out := env.mustRun("reset", "--yes")
			assert.Contains(t, out, "All data cleared")

			assert.Contains(t, env.mustRun("list", "ls"), "No lists yet")
			assert.Contains(t, env.mustRun("settings"), "sound:             on", "settings back to defaults")
		})
	}
}

func TestRestore_SelectionNamingNoList(t *testing.T) {
	env := newTestEnv(t, "json")
	env.mustRun("list", "add", "Lunch")

	backup := filepath.Join(env.dir, "backup.json")
	require.NoError(t, os.WriteFile(backup, []byte(`{
  "lists": [{"id": "a", "name": "Lunch", "items": []}],
  "settings": {"selectedListId": "ghost", "allowDuplicatesInSession": true, "soundEnabled": true}
}`), 0644))

	env.mustRun("restore", backup, "--yes")
	assert.Contains(t, env.mustRun("settings"), "selected list:     ghost")

	// What was restored backs up and restores again unchanged.
	again := filepath.Join(env.dir, "again.json")
	env.mustRun("backup", "-o", again)
	env.mustRun("restore", again, "--yes")
	assert.Equal(t, env.mustRun("backup", "-o", "-"), env.mustRun("backup", "-o", "-"))

	b, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"selectedListId": "ghost"`)
}
