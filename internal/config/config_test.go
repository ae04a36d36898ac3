package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("a1", 32)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  signing_key: "+testKey+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, "sentinel", cfg.Auth.Issuer)
	assert.Equal(t, "sentinel-api", cfg.Auth.Audience)
	assert.Equal(t, 6, cfg.Password.RequiredLength)
	assert.True(t, cfg.Password.RequireNonAlphanumeric)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	key, err := cfg.Auth.GetSigningKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\nauth:\n  signing_key: "+testKey+"\n")
	t.Setenv("SENTINEL_SERVER_PORT", "9100")
	t.Setenv("SENTINEL_AUTH_ISSUER", "gateway")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "gateway", cfg.Auth.Issuer)
}

func TestLoad_MissingSigningKey(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.signing_key is required")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Port: 8080},
			Database:  DatabaseConfig{Driver: "memory"},
			Auth:      AuthConfig{SigningKey: testKey, TokenLifetime: time.Hour},
			Password:  PasswordConfig{RequiredLength: 6},
			Logging:   LoggingConfig{Level: "info"},
			RateLimit: RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database.driver"},
		{name: "postgres without host", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.User = "u"
			c.Database.Database = "d"
		}, wantErr: "database.host"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: "database.path"},
		{name: "short key", mutate: func(c *Config) { c.Auth.SigningKey = "abcd" }, wantErr: "auth.signing_key"},
		{name: "zero lifetime", mutate: func(c *Config) { c.Auth.TokenLifetime = 0 }, wantErr: "auth.token_lifetime"},
		{name: "zero password length", mutate: func(c *Config) { c.Password.RequiredLength = 0 }, wantErr: "password.required_length"},
		{name: "rate limit without window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantErr: "rate_limit"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_URL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "sentinel", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/sentinel?sslmode=disable", c.URL())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=sentinel sslmode=disable", c.DSN())
}
