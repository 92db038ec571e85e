package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "https://api.allorigins.win/get", cfg.Proxy.BaseURL)
	require.Equal(t, 15, cfg.Proxy.TimeoutSeconds)
	require.Equal(t, PersistenceMemory, cfg.Persistence.Mode)
	require.Equal(t, "saved_images", cfg.Archive.BaseDir)
	require.True(t, cfg.Logging.Development)
	require.False(t, cfg.Headless.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
proxy:
  timeout_seconds: 5
persistence:
  mode: remote
  base_url: https://curation.example.com
headless:
  enabled: true
  max_parallel: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 5, cfg.Proxy.TimeoutSeconds)
	require.Equal(t, PersistenceRemote, cfg.Persistence.Mode)
	require.True(t, cfg.Headless.Enabled)
	require.Equal(t, 2, cfg.Headless.MaxParallel)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.Enabled = true
	require.Error(t, cfg.Validate())
	cfg.Auth.APIKey = "secret"
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.Mode = PersistencePostgres
	require.Error(t, cfg.Validate())
	cfg.DB.DSN = "postgres://localhost/curator"
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.Mode = PersistenceRemote
	require.Error(t, cfg.Validate())
	cfg.Persistence.BaseURL = "https://curation.example.com"
	require.NoError(t, cfg.Validate())
	cfg.Persistence.Username = "sara"
	require.Error(t, cfg.Validate(), "credentials must come in pairs")
	cfg.Persistence.Password = "pw"
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.Mode = "bogus"
	require.Error(t, cfg.Validate())
}
