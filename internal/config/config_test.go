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
	t.Helper()
	for _, key := range []string{
		EnvConfigPath, "TL_API_KEY",
		"VIDEOSTORE_STORE_DIR", "VIDEOSTORE_STORE_BACKEND", "VIDEOSTORE_STORE_TOP_K",
		"VIDEOSTORE_LOG_LEVEL", "VIDEOSTORE_LOG_FORMAT",
		"VIDEOSTORE_TWELVELABS_TL_API_KEY", "VIDEOSTORE_TWELVELABS_BASE_URL",
		"VIDEOSTORE_TWELVELABS_MODEL", "VIDEOSTORE_TWELVELABS_TIMEOUT",
	} {
		if v, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, v) })
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videostore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 5, cfg.Store.TopK)
	assert.Equal(t, BackendFiles, cfg.Store.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store:
  dir: /var/lib/videostore
  backend: sqlite
  topK: 10
log:
  level: debug
  format: json
twelvelabs:
  apiKey: file-key
  timeout: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/videostore", cfg.Store.Dir)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Store.TopK)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "file-key", cfg.TwelveLabs.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TwelveLabs.Timeout)
	assert.Equal(t, "https://api.twelvelabs.io", cfg.TwelveLabs.BaseURL, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "store:\n  dir: from-file\n  topK: 10\ntwelvelabs:\n  apiKey: file-key\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv("VIDEOSTORE_STORE_TOP_K", "3")
	t.Setenv("VIDEOSTORE_TWELVELABS_BASE_URL", "http://localhost:9999")
	t.Setenv("TL_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Store.Dir)
	assert.Equal(t, 3, cfg.Store.TopK)
	assert.Equal(t, "http://localhost:9999", cfg.TwelveLabs.BaseURL)
	assert.Equal(t, "env-key", cfg.TwelveLabs.APIKey)
}

func TestLoad_PrefixedAPIKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("TL_API_KEY", "plain")
	t.Setenv("VIDEOSTORE_TWELVELABS_TL_API_KEY", "prefixed")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.TwelveLabs.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "store: [unclosed"))
	assert.Error(t, err)

	t.Setenv("VIDEOSTORE_STORE_TOP_K", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Store.Backend = "postgres"
	cfg.Store.TopK = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "store.topK")
	assert.Contains(t, err.Error(), "log.format")
}
