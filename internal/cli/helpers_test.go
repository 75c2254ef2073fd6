package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/roulette/internal/config"
	"github.com/roach88/roulette/internal/ident"
)

// testEnv runs CLI invocations against one data file, sharing an ID
// sequence across runs so IDs are predictable ("id-1", "id-2", ...).
type testEnv struct {
	t       *testing.T
	dir     string
	backend string
	data    string
	ids     *ident.SequenceGenerator
}

func newTestEnv(t *testing.T, backend string) *testEnv {
	t.Helper()
	dir := t.TempDir()

	// Isolate from the developer's config and environment.
	t.Setenv(config.EnvConfig, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvData, "")
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvSpinDuration, "")
	t.Setenv(config.EnvLogLevel, "")

	name := "roulette.db"
	if backend == "json" {
		name = "roulette.json"
	}
	return &testEnv{
		t:       t,
		dir:     dir,
		backend: backend,
		data:    filepath.Join(dir, "data", name),
		ids:     ident.NewSequenceGenerator("id"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) result {
	e.t.Helper()

	opts := &RootOptions{
		IDs:          e.ids,
		SpinDuration: 10 * time.Millisecond,
	}
	cmd := NewRootCommandWithOptions(opts)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--backend", e.backend, "--data", e.data}, args...))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun runs args and fails the test on error.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	r := e.run(args...)
	require.NoError(e.t, r.err, "roulette %s\nstdout: %s\nstderr: %s", strings.Join(args, " "), r.stdout, r.stderr)
	return r.stdout
}

// decode parses a JSON CLIResponse and decodes its data into v.
func decode(t *testing.T, out string, v interface{}) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(out)).Decode(&raw), "output: %s", out)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

// decodeAll parses a stream of JSON responses, as written by session.
func decodeAll(t *testing.T, out string) []CLIResponse {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(out))
	var resps []CLIResponse
	for {
		var r CLIResponse
		err := dec.Decode(&r)
		if err == io.EOF {
			return resps
		}
		require.NoError(t, err)
		resps = append(resps, r)
	}
}
