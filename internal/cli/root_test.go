package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/till/pkg/types"
)

// env holds the directories one CLI test runs against.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	return env{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the root command with args and returns captured stdout and
// stderr.
func (e env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir, "--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun is run that fails the test on error.
func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return stdout
}

func (e env) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(content), 0o644))
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "version")
	assert.Contains(t, out, "till dev")
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "init")
	assert.Contains(t, out, "Till initialized")
	assert.Contains(t, out, "(schema version 2)")

	assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(e.dataDir, types.DefaultDBFile))

	// Running again is harmless.
	e.mustRun(t, "init")
}

func TestInit_CustomDBFile(t *testing.T) {
	e := newEnv(t)
	e.writeConfig(t, "db_file: caja.db\n")

	e.mustRun(t, "init")
	assert.FileExists(t, filepath.Join(e.dataDir, "caja.db"))
}

func TestInit_JSON(t *testing.T) {
	e := newEnv(t)
	got := decode[map[string]any](t, e.mustRun(t, "--json", "init"))
	assert.Equal(t, filepath.Join(e.dataDir, types.DefaultDBFile), got["database"])
	assert.Equal(t, float64(2), got["schema_version"])
}

func TestSaleHelpListsPaymentMethods(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "sale", "sell", "--help")
	assert.Contains(t, out, "efectivo, debito, credito")
}

func TestUnknownFlagIsUserError(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "product", "list", "--bogus")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), exitUserError},
		{"system error", systemError(errors.New("disk")), exitSysError},
		{"classified not found", classify(fmt.Errorf("get: %w", types.ErrProductNotFound)), exitUserError},
		{"classified stock", classify(types.ErrInsufficientStock), exitUserError},
		{"classified validation", classify(errors.Join(types.ErrInvalidPrice, types.ErrInvalidName)), exitUserError},
		{"classified storage failure", classify(errors.New("database is locked")), exitSysError},
		{"classified keeps existing code", classify(userError(errors.New("bad id"))), exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
	assert.NoError(t, classify(nil))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "5.00", money(5))
	assert.Equal(t, "0.10", money(0.1))
	assert.Equal(t, "1234.57", money(1234.567))
}
