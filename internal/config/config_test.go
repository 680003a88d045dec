package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Share.TokenTTL)
	assert.False(t, cfg.Database.IsConfigured())
}

func TestLoad_YamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: "9000"
  mode: release
database:
  host: db.internal
  user: reviewer
  name: reviews
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Database.IsConfigured())
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.GetDSN(), "dbname=reviews")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DB_HOST", "env-host")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SHARE_TOKEN_TTL", "1h")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.Share.TokenTTL)
}
