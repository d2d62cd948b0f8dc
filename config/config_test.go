package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-profile-cache/cache"
	"github.com/goliatone/go-profile-cache/redact"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 10000, cfg.Cache.Capacity)
	assert.Equal(t, 5*time.Second, cfg.Tally.TTL)
	assert.Equal(t, []string{"favoriteColor"}, cfg.Loader.RangePartitions)
	assert.Equal(t, redact.DefaultPatterns, cfg.Redact.Patterns)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, cfg, Default())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
mode: staging
logging:
  level: warn
store:
  driver: sqlite3
  dsn: "file:profile.db"
cache:
  backend: bolt
  path: /tmp/profile-cache.db
  ttl: 30s
loader:
  wait: 2ms
  batch_capacity: 50
  range_partitions: []
tally:
  ttl: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeStaging, cfg.Mode)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "file:profile.db", cfg.Store.DSN)
	assert.Equal(t, cache.BackendBolt, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Millisecond, cfg.Loader.Wait)
	assert.Equal(t, 50, cfg.Loader.BatchCapacity)
	assert.Empty(t, cfg.Loader.RangePartitions)
	assert.Equal(t, 10*time.Second, cfg.Tally.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROFILE_LOGGING_LEVEL", "error")
	t.Setenv("PROFILE_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("PROFILE_TALLY_TTL", "1m")

	path := writeConfig(t, "logging:\n  level: debug\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Tally.TTL)
}

func TestLoad_ModeOverlays(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		t.Setenv("PROFILE_MODE", "development")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.True(t, cfg.IsDevelopment())
		assert.True(t, cfg.ToLogging().Development)
	})

	t.Run("test", func(t *testing.T) {
		t.Setenv("PROFILE_MODE", "test")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "off", cfg.Logging.Level)
	})

	t.Run("explicit level wins", func(t *testing.T) {
		path := writeConfig(t, "mode: test\nlogging:\n  level: warn\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"mode", "mode: qa\n", "mode"},
		{"level", "logging:\n  level: verbose\n", "logging.level"},
		{"format", "logging:\n  format: xml\n", "logging.format"},
		{"sql without dsn", "store:\n  driver: postgres\n", "store.dsn"},
		{"bolt without path", "cache:\n  backend: bolt\n", "cache.path"},
		{"capacity", "cache:\n  capacity: 0\n", "cache.capacity"},
		{"pattern", "redact:\n  patterns: ['(']\n", "redact.patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, goerrors.IsValidation(err))

			fields, ok := goerrors.GetValidationErrors(err)
			require.True(t, ok)
			var names []string
			for _, f := range fields {
				names = append(names, f.Field)
			}
			assert.Contains(t, names, tt.field)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: read")
}

func TestConversions(t *testing.T) {
	cfg := Default()

	c := cfg.Cache.ToCache()
	assert.Equal(t, cfg.Cache.Shards, c.NumShards)
	assert.NoError(t, c.Validate())

	l := cfg.Loader.ToLoader()
	assert.Equal(t, cfg.Loader.Wait, l.Wait)
	assert.Equal(t, cfg.Loader.RangePartitions, l.RangePartitions)

	lg := cfg.ToLogging()
	assert.False(t, lg.Development)
	assert.Equal(t, cfg.Redact.Patterns, lg.Patterns)
}
