// Package config provides configuration management for the Sentinel gateway.
// Configuration can be loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/prn-tf/sentinel/internal/pkg/crypto"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Password  PasswordConfig  `mapstructure:"password"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	Production      bool          `mapstructure:"production"`
}

// Addr returns the listen address in host:port format.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds credential store connection settings.
// Supports PostgreSQL, SQLite and a process-local memory backend.
type DatabaseConfig struct {
	// Driver specifies the backend: "sqlite", "postgres" or "memory".
	Driver string `mapstructure:"driver"`

	// PostgreSQL settings (used when Driver is "postgres")
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// SQLite settings (used when Driver is "sqlite")
	Path            string `mapstructure:"path"`             // Path to SQLite database file or ":memory:"
	JournalMode     string `mapstructure:"journal_mode"`     // WAL, DELETE, TRUNCATE, etc.
	BusyTimeout     int    `mapstructure:"busy_timeout"`     // Milliseconds to wait for locks
	CacheSize       int    `mapstructure:"cache_size"`       // Page cache size (negative = KB)
	SynchronousMode string `mapstructure:"synchronous_mode"` // NORMAL, FULL, OFF

	// AutoMigrate applies embedded migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Only valid when Driver is "postgres".
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL form, as expected by the migrator.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// IsEmbedded returns true if using an embedded database (SQLite or memory).
func (c DatabaseConfig) IsEmbedded() bool {
	return c.Driver == "sqlite" || c.Driver == "memory"
}

// RedisConfig holds Redis connection settings.
// Redis backs the registration lock when several gateway instances share a store.
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Enabled     bool          `mapstructure:"enabled"`
}

// Addr returns the Redis address in host:port format.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds token settings.
type AuthConfig struct {
	// SigningKey is the hex-encoded HMAC key used to sign and verify tokens.
	// Must decode to at least 32 bytes. There is no default.
	SigningKey string `mapstructure:"signing_key"`

	// TokenLifetime is how long an issued token stays valid.
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`

	// Issuer is written to and required in the iss claim.
	Issuer string `mapstructure:"issuer"`

	// Audience is written to and required in the aud claim.
	Audience string `mapstructure:"audience"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// RegistrationLockTTL bounds how long a username stays locked during registration.
	RegistrationLockTTL time.Duration `mapstructure:"registration_lock_ttl"`
}

// GetSigningKey returns the decoded signing key.
func (c AuthConfig) GetSigningKey() ([]byte, error) {
	return crypto.ParseHexKey(c.SigningKey)
}

// PasswordConfig holds the password policy applied at registration.
type PasswordConfig struct {
	RequiredLength         int  `mapstructure:"required_length"`
	RequiredUniqueChars    int  `mapstructure:"required_unique_chars"`
	RequireDigit           bool `mapstructure:"require_digit"`
	RequireLowercase       bool `mapstructure:"require_lowercase"`
	RequireUppercase       bool `mapstructure:"require_uppercase"`
	RequireNonAlphanumeric bool `mapstructure:"require_non_alphanumeric"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled determines if metrics collection is active.
	Enabled bool `mapstructure:"enabled"`

	// Path is the URL path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting settings for the public auth endpoints.
type RateLimitConfig struct {
	// Enabled determines if rate limiting is active.
	Enabled bool `mapstructure:"enabled"`

	// Requests is the number of requests allowed per client IP within Window.
	Requests int `mapstructure:"requests"`

	// Window is the sliding window length.
	Window time.Duration `mapstructure:"window"`
}

// Load reads configuration from the specified file and environment variables.
// Environment variables take precedence over file values.
// Environment variables are prefixed with SENTINEL_ and use _ as separator.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file configuration
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sentinel")
	}

	// Read config file (optional - environment variables can be used instead)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is acceptable - use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", 1024*1024) // 1MB
	v.SetDefault("server.production", false)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sentinel")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "sentinel")
	v.SetDefault("database.ssl_mode", "prefer")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	// SQLite defaults
	v.SetDefault("database.path", "./data/sentinel.db")
	v.SetDefault("database.journal_mode", "WAL")
	v.SetDefault("database.busy_timeout", 5000)
	v.SetDefault("database.cache_size", -2000)
	v.SetDefault("database.synchronous_mode", "NORMAL")
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.enabled", false)

	// Auth defaults
	v.SetDefault("auth.signing_key", "") // Must be provided
	v.SetDefault("auth.token_lifetime", 7*24*time.Hour)
	v.SetDefault("auth.issuer", "sentinel")
	v.SetDefault("auth.audience", "sentinel-api")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.registration_lock_ttl", 10*time.Second)

	// Password policy defaults
	v.SetDefault("password.required_length", 6)
	v.SetDefault("password.required_unique_chars", 1)
	v.SetDefault("password.require_digit", true)
	v.SetDefault("password.require_lowercase", true)
	v.SetDefault("password.require_uppercase", true)
	v.SetDefault("password.require_non_alphanumeric", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Rate limiting defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", time.Minute)
}

// Validate checks the configuration for required values and valid ranges.
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Validate database configuration
	validDrivers := map[string]bool{"postgres": true, "sqlite": true, "memory": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be 'postgres', 'sqlite' or 'memory'")
	}

	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres driver")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for postgres driver")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres driver")
		}
	} else if c.Database.Driver == "sqlite" {
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite driver")
		}
	}

	// Validate auth configuration. A missing or short key is fatal.
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if _, err := c.Auth.GetSigningKey(); err != nil {
		return fmt.Errorf("auth.signing_key: %w", err)
	}
	if c.Auth.TokenLifetime <= 0 {
		return fmt.Errorf("auth.token_lifetime must be positive")
	}

	if c.Password.RequiredLength < 1 {
		return fmt.Errorf("password.required_length must be at least 1")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit.requests and rate_limit.window must be positive when enabled")
	}

	// Validate logging configuration
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	return nil
}

// MustLoad loads configuration or panics on error.
// Useful for main function initialization.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
