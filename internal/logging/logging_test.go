package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/sentinel/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", "")

	logger.Info().Str("user", "testuser").Msg("login succeeded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sentinel", entry["app"])
	assert.Equal(t, "testuser", entry["user"])
	assert.Equal(t, "login succeeded", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "console", "")

	logger.Warn().Msg("gate denied")

	assert.Contains(t, buf.String(), "gate denied")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNew(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	_, err = New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.log")
	logger, err := New(config.LoggingConfig{Level: "debug", Output: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
