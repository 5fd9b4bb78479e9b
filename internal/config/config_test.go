package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, "plain", cfg.Auth.PasswordScheme)
	assert.Equal(t, 3, cfg.Gate.PuzzleFailureLimit)
	assert.Equal(t, 15*time.Minute, cfg.Gate.WindowTTL)
	assert.Equal(t, []string{"images", "."}, cfg.Tiles.Dirs)
	assert.Equal(t, 150, cfg.Tiles.Size)
	assert.Equal(t, 8*time.Hour, cfg.Pass.TTL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
server:
  port: 9090
storage:
  type: redis
  redis:
    url: redis://localhost:6379/0
gate:
  window_ttl: 5m
tiles:
  dirs: [assets, pics]
  size: 64
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schoolgate.yaml"), []byte(yaml), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.Redis.URL)
	assert.Equal(t, 10, cfg.Storage.Redis.PoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Gate.WindowTTL)
	assert.Equal(t, []string{"assets", "pics"}, cfg.Tiles.Dirs)
	assert.Equal(t, 64, cfg.Tiles.Size)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("SCHOOLGATE_SERVER_PORT", "7070")
	t.Setenv("SCHOOLGATE_AUTH_PASSWORD_SCHEME", "bcrypt")
	t.Setenv("SCHOOLGATE_PASS_SECRET", "s3cret")
	t.Setenv("SCHOOLGATE_AUTH_BOOTSTRAP_ADMIN_USERNAME", "root")
	t.Setenv("SCHOOLGATE_AUTH_BOOTSTRAP_ADMIN_PASSWORD", "changeme")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "bcrypt", cfg.Auth.PasswordScheme)
	assert.Equal(t, "s3cret", cfg.Pass.Secret)
	assert.Equal(t, "root", cfg.Auth.BootstrapAdmin.Username)
	assert.Equal(t, "changeme", cfg.Auth.BootstrapAdmin.Password)
	assert.Equal(t, "Administrator", cfg.Auth.BootstrapAdmin.FullName)
}

func TestExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis }},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = StoragePostgres }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero attempts", func(c *Config) { c.Auth.MaxFailedAttempts = 0 }},
		{"bootstrap admin without password", func(c *Config) { c.Auth.BootstrapAdmin.Username = "root" }},
		{"zero puzzle limit", func(c *Config) { c.Gate.PuzzleFailureLimit = 0 }},
		{"zero tile size", func(c *Config) { c.Tiles.Size = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestDefaultMatchesLoadWithoutSources(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
	assert.NoError(t, Default().Validate())
}
