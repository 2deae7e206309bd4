package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "PORTFOLIO_FILE", "MAPPINGS_DIR", "POSTGRES_URL", "DEFAULT_LANG", "MAX_UPLOAD_BYTES", "UPLOAD_TTL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dashboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9090"
portfolio_file = "data/holdings.csv"
mappings_dir = "data"
upload_ttl = "5m"
max_upload_bytes = 1024
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "data/holdings.csv", cfg.PortfolioFile)
	assert.Equal(t, "data", cfg.MappingsDir)
	assert.Equal(t, 5*time.Minute, cfg.UploadTTL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("UPLOAD_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dashboard.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = "), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err := Load()
	assert.Error(t, err)
}
