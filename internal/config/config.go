// Package config handles loading and validating the application
// configuration from a gymstack.json file with environment overrides.
//
// The configuration file is expected to be a JSON object with database
// connection details, HTTP listen address, pool sizing, and an admin key
// for the management API. Any field can be overridden through a
// GYMSTACK_* environment variable (optionally supplied via a .env
// file), which is how deployments inject secrets without editing the
// config file.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. The file is read once at
// startup; changes require a restart.
type Config struct {
	// DBConn is the PostgreSQL host:port (e.g., "infra-postgres:5432").
	DBConn string `json:"dbConn"`

	// DBName is the PostgreSQL database name shared by all tenants.
	DBName string `json:"dbName"`

	// DBUser is the PostgreSQL username.
	DBUser string `json:"dbUser"`

	// DBPass is the PostgreSQL password.
	DBPass string `json:"dbPass"`

	// ListenAddr is the HTTP listen address (default ":3000").
	ListenAddr string `json:"listenAddr"`

	// AdminKey is a shared secret for authenticating management API calls.
	// Clients send it as "Authorization: Bearer <adminKey>".
	AdminKey string `json:"adminKey"`

	// Env selects the logger profile: "production" or "development".
	Env string `json:"env"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `json:"logLevel"`

	// PoolMaxConns bounds the shared connection pool (default 10).
	PoolMaxConns int32 `json:"poolMaxConns"`

	// AcquireTimeoutSeconds bounds how long a unit of work may wait for
	// a connection when the pool is exhausted (default 10). A unit of
	// work that cannot acquire within this window fails instead of
	// queueing forever.
	AcquireTimeoutSeconds int `json:"acquireTimeoutSeconds"`
}

// Load reads and parses configuration from the given file path, then
// applies environment overrides. It returns an error if the file cannot
// be read, parsed, or is missing required fields.
func Load(path string) (*Config, error) {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides file values with GYMSTACK_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.DBConn, "GYMSTACK_DB_CONN")
	setString(&c.DBName, "GYMSTACK_DB_NAME")
	setString(&c.DBUser, "GYMSTACK_DB_USER")
	setString(&c.DBPass, "GYMSTACK_DB_PASS")
	setString(&c.ListenAddr, "GYMSTACK_LISTEN_ADDR")
	setString(&c.AdminKey, "GYMSTACK_ADMIN_KEY")
	setString(&c.Env, "GYMSTACK_ENV")
	setString(&c.LogLevel, "GYMSTACK_LOG_LEVEL")

	if v, ok := os.LookupEnv("GYMSTACK_POOL_MAX_CONNS"); ok {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			c.PoolMaxConns = int32(n)
		}
	}
	if v, ok := os.LookupEnv("GYMSTACK_ACQUIRE_TIMEOUT_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.AcquireTimeoutSeconds = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PoolMaxConns <= 0 {
		c.PoolMaxConns = 10
	}
	if c.AcquireTimeoutSeconds <= 0 {
		c.AcquireTimeoutSeconds = 10
	}
}

// validate checks that all required fields are present.
func (c *Config) validate() error {
	switch {
	case c.DBConn == "":
		return fmt.Errorf("config: dbConn is required")
	case c.DBName == "":
		return fmt.Errorf("config: dbName is required")
	case c.DBUser == "":
		return fmt.Errorf("config: dbUser is required")
	case c.DBPass == "":
		return fmt.Errorf("config: dbPass is required")
	case c.AdminKey == "":
		return fmt.Errorf("config: adminKey is required")
	}
	return nil
}

// AcquireTimeout returns AcquireTimeoutSeconds as a duration.
func (c *Config) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutSeconds) * time.Second
}

// ConnString builds a PostgreSQL connection URI from the config fields.
// The password is URL-encoded to handle special characters safely.
func (c *Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		url.QueryEscape(c.DBUser),
		url.QueryEscape(c.DBPass),
		c.DBConn,
		url.QueryEscape(c.DBName),
	)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
