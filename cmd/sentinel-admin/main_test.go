package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/pkg/crypto"
)

const testKey = "abababababababababababababababababababababababababababababababab"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
auth:
  signing_key: %s
  bcrypt_cost: 4
`, filepath.Join(dir, "sentinel.db"), testKey)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestKeygen(t *testing.T) {
	out, _, err := execute(t, "keygen")
	require.NoError(t, err)

	key, err := crypto.ParseHexKey(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, key, crypto.SigningKeySize)
}

func TestRootCmd_ConfigFlagNotShared(t *testing.T) {
	cfgPath := writeConfig(t)
	first := newRootCmd()
	second := newRootCmd()

	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{"--config", cfgPath, "user", "list"})
	require.NoError(t, first.Execute())

	assert.Equal(t, cfgPath, first.PersistentFlags().Lookup("config").Value.String())
	assert.Empty(t, second.PersistentFlags().Lookup("config").Value.String())
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}

func TestUserCreateAndList(t *testing.T) {
	cfgPath := writeConfig(t)

	out, _, err := execute(t, "--config", cfgPath, "user", "create",
		"--username", "testuser", "--email", "testuser@example.com", "--password", "Password123!")
	require.NoError(t, err)
	assert.Contains(t, out, "created user testuser")

	out, _, err = execute(t, "--config", cfgPath, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "testuser@example.com")
	assert.Contains(t, out, "1 of 1 users")
}

func TestUserCreate_RuleViolations(t *testing.T) {
	cfgPath := writeConfig(t)

	_, stderr, err := execute(t, "--config", cfgPath, "user", "create",
		"--username", "bob", "--password", "short")

	require.Error(t, err)
	assert.Contains(t, stderr, "PasswordRequiresDigit")
}

func TestUserCreate_Duplicate(t *testing.T) {
	cfgPath := writeConfig(t)
	args := []string{"--config", cfgPath, "user", "create", "--username", "alice", "--password", "Password123!"}

	_, _, err := execute(t, args...)
	require.NoError(t, err)

	args[5] = "ALICE"
	_, stderr, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, stderr, "DuplicateUserName")
}

func TestTokenInspect(t *testing.T) {
	cfgPath := writeConfig(t)

	key, err := crypto.ParseHexKey(testKey)
	require.NoError(t, err)
	issuer, err := auth.NewJWTIssuer(auth.TokenConfig{
		SigningKey: key,
		Lifetime:   auth.DefaultTokenLifetime,
		Issuer:     "sentinel",
		Audience:   "sentinel-api",
	})
	require.NoError(t, err)
	token, err := issuer.CreateToken(domain.NewUser("testuser", ""))
	require.NoError(t, err)

	out, _, err := execute(t, "--config", cfgPath, "token", "inspect", token)
	require.NoError(t, err)
	assert.Contains(t, out, `"sub": "testuser"`)
	assert.Contains(t, out, `"unique_name": "testuser"`)

	_, _, err = execute(t, "--config", cfgPath, "token", "inspect", "not-a-token")
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}
