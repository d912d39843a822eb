package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gymstack.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validBody = `{
	"dbConn": "localhost:5432",
	"dbName": "gymstack",
	"dbUser": "gym",
	"dbPass": "secret",
	"adminKey": "admin-key"
}`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validBody))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.EqualValues(t, 10, cfg.PoolMaxConns)
	assert.Equal(t, 10*time.Second, cfg.AcquireTimeout())
}

func TestLoadMissingRequiredField(t *testing.T) {
	_, err := Load(writeConfig(t, `{"dbConn": "localhost:5432"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load(writeConfig(t, `{not json`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GYMSTACK_DB_PASS", "from-env")
	t.Setenv("GYMSTACK_LISTEN_ADDR", ":9999")
	t.Setenv("GYMSTACK_POOL_MAX_CONNS", "25")
	t.Setenv("GYMSTACK_ACQUIRE_TIMEOUT_SECONDS", "3")

	cfg, err := Load(writeConfig(t, validBody))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DBPass)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.EqualValues(t, 25, cfg.PoolMaxConns)
	assert.Equal(t, 3*time.Second, cfg.AcquireTimeout())
}

func TestConnStringEscapesCredentials(t *testing.T) {
	cfg := &Config{
		DBConn: "db:5432",
		DBName: "gymstack",
		DBUser: "gym",
		DBPass: "p@ss w0rd",
	}
	got := cfg.ConnString()
	assert.Equal(t, "postgres://gym:p%40ss+w0rd@db:5432/gymstack?sslmode=disable", got)
}
