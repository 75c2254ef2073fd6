package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "roulette", cmd.Use)
	assert.Contains(t, cmd.Long, "random picker")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"list", "add"}, {"list", "ls"}, {"list", "show"}, {"list", "rm"}, {"list", "rename"}, {"list", "select"},
		{"item", "add"}, {"item", "bulk"}, {"item", "rm"},
		{"settings"}, {"spin"}, {"session"},
		{"export", "csv"}, {"import", "csv"},
		{"backup"}, {"restore"}, {"reset"}, {"validate"},
		{"config", "init"}, {"config", "show"},
	}

	for _, path := range commands {
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"data", "backend", "config"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
	}
}

func TestDestructiveCommandsHaveYesFlag(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"list", "rm"}, {"restore"}, {"reset"}} {
		subCmd, _, err := cmd.Find(path)
		require.NoError(t, err)

		yes := subCmd.Flags().Lookup("yes")
		require.NotNil(t, yes, "%v", path)
		assert.Equal(t, "y", yes.Shorthand)
		assert.Equal(t, "false", yes.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t, "json")

	r := env.run("--format", "yaml", "list", "ls")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.err.Error(), "invalid format")
}

func TestInvalidBackend(t *testing.T) {
	env := newTestEnv(t, "postgres")

	r := env.run("list", "ls")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.err.Error(), "invalid storage backend")
}

func TestConfigFileIsRead(t *testing.T) {
	env := newTestEnv(t, "json")
	configPath := filepath.Join(env.dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: debug\n"), 0644))

	r := env.run("--config", configPath, "list", "ls")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "configuration loaded", "debug logging enabled by config")
}

func TestVerboseLogsToStderr(t *testing.T) {
	env := newTestEnv(t, "json")

	r := env.run("-v", "--format", "json", "list", "ls")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "Using json storage")
	decode(t, r.stdout, nil)
}
