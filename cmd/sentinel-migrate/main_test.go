package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, driver string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  driver: %s
  path: %s
auth:
  signing_key: "%064d"
`, driver, filepath.Join(dir, "sentinel.db"), 0)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSQLiteUpAndStatus(t *testing.T) {
	cfgPath := writeConfig(t, "sqlite")

	out, err := execute(t, "--config", cfgPath, "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations completed successfully")

	// Re-running is a no-op.
	_, err = execute(t, "--config", cfgPath, "up")
	require.NoError(t, err)

	out, err = execute(t, "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1")
}

func TestSQLiteDownUnsupported(t *testing.T) {
	cfgPath := writeConfig(t, "sqlite")

	_, err := execute(t, "--config", cfgPath, "down")

	assert.ErrorIs(t, err, ErrDownUnsupported)
}

func TestMemoryDriverHasNoSchema(t *testing.T) {
	cfgPath := writeConfig(t, "memory")

	_, err := execute(t, "--config", cfgPath, "up")

	assert.Error(t, err)
}

func TestRootCmd_ConfigFlagNotShared(t *testing.T) {
	cfgPath := writeConfig(t, "sqlite")
	first := newRootCmd()
	second := newRootCmd()

	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{"--config", cfgPath, "up"})
	require.NoError(t, first.Execute())

	assert.Equal(t, cfgPath, first.PersistentFlags().Lookup("config").Value.String())
	assert.Empty(t, second.PersistentFlags().Lookup("config").Value.String())
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Sentinel Migration Tool")
}
