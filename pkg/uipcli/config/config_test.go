package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty config", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("parses all fields", func(t *testing.T) {
		path := writeConfig(t, `
domain: alpha
client-id: custom-client
scope: openid custom
port: 9100
timeout: 2m
token-storage: keychain
folder-key: fk-1
non-interactive: true
base-urls:
  onprem: https://uipath.corp.example
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "alpha", cfg.Domain)
		assert.Equal(t, "custom-client", cfg.ClientID)
		assert.Equal(t, "openid custom", cfg.Scope)
		assert.Equal(t, 9100, cfg.Port)
		assert.Equal(t, "2m", cfg.Timeout)
		assert.Equal(t, "keychain", cfg.TokenStorage)
		assert.Equal(t, "fk-1", cfg.FolderKey)
		assert.True(t, cfg.NonInteractive)
		assert.Equal(t, "https://uipath.corp.example", cfg.BaseURLs["onprem"])
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		path := writeConfig(t, "domain: [unclosed")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestAuthConfig(t *testing.T) {
	t.Run("empty config keeps defaults", func(t *testing.T) {
		cfg, err := (&Config{}).AuthConfig()
		require.NoError(t, err)
		assert.Equal(t, "cloud", cfg.Domain)
		assert.Equal(t, 8104, cfg.DefaultPort)
		assert.Equal(t, 5*time.Minute, cfg.Timeout)
		assert.NotEmpty(t, cfg.ClientID)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		cfg, err := (&Config{Domain: "staging", Port: 9100, Timeout: "90s"}).AuthConfig()
		require.NoError(t, err)
		assert.Equal(t, "staging", cfg.Domain)
		assert.Equal(t, 9100, cfg.DefaultPort)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
	})

	t.Run("bad timeout fails", func(t *testing.T) {
		_, err := (&Config{Timeout: "soon"}).AuthConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timeout")
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("UIPCLI_CONFIG", "/tmp/custom.yaml")
		assert.Equal(t, "/tmp/custom.yaml", DefaultConfigPath())
	})

	t.Run("falls back to the user config dir", func(t *testing.T) {
		t.Setenv("UIPCLI_CONFIG", "")
		path := DefaultConfigPath()
		assert.Contains(t, path, "uipcli")
		assert.True(t, filepath.IsAbs(path))
	})
}
