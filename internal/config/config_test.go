package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KABU_WATCHLIST", "KABU_STORAGE_BACKEND", "SQLITE_PATH", "DATA_DIR",
		"NEWS_API_KEY", "KABU_TRANSLATE_TO", "LOG_LEVEL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kabu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  backend: "sqlite"
  watchlist_path: "/tmp/kabu/list.json"
  sqlite_path: "/tmp/kabu/kabu.db"
  data_dir: "/tmp/kabu/data"
market:
  timezone: "Asia/Tokyo"
  http_timeout: "5s"
news:
  source: "newsapi"
  api_key: "test-key"
  language: "en"
  max_results: 3
  translate_to: "ja"
ui:
  default_symbols: ["MSFT", "6758.T"]
  default_period: "1mo"
  ticker_interval: "50ms"
  ticker_step: 2
logging:
  level: "debug"
  format: "json"
  file: "/tmp/kabu/kabu.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// -- Storage --
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/kabu/list.json", cfg.Storage.WatchlistPath)
	assert.Equal(t, "/tmp/kabu/data", cfg.Storage.DataDir)

	// -- Market --
	assert.Equal(t, 5*time.Second, cfg.Market.HTTPTimeout)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Market.ChartURL, "default kept")

	// -- News --
	assert.Equal(t, "test-key", cfg.News.APIKey)
	assert.Equal(t, 3, cfg.News.MaxResults)

	// -- UI --
	assert.Equal(t, []string{"MSFT", "6758.T"}, cfg.UI.DefaultSymbols)
	assert.Equal(t, 50*time.Millisecond, cfg.UI.TickerInterval)
	assert.Equal(t, 2, cfg.UI.TickerStep)

	// -- Logging --
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Storage.Backend)
	require.Len(t, cfg.UI.DefaultSymbols, 5)
	assert.Equal(t, "7203.T", cfg.UI.DefaultSymbols[3])
	// Without an API key the keyless source is chosen.
	assert.Equal(t, "google", cfg.News.Source)
	assert.Equal(t, 5, cfg.News.MaxResults)
	assert.NotEmpty(t, cfg.Logging.File, "dated temp file by default")
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
news:
  api_key: "yaml-key"
storage:
  watchlist_path: "/original/list.json"
`)

	t.Setenv("NEWS_API_KEY", "env-key")
	t.Setenv("KABU_WATCHLIST", "/env/list.json")
	t.Setenv("APCA_API_KEY_ID", "apca-id")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.News.APIKey)
	assert.Equal(t, "newsapi", cfg.News.Source, "key set selects newsapi")
	assert.Equal(t, "/env/list.json", cfg.Storage.WatchlistPath)
	assert.Equal(t, "apca-id", cfg.Alpaca.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.News.Source = "google"
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.News.Source = "google"
	bad.Storage.Backend = "redis"
	assert.Error(t, bad.Validate(), "unknown backend")

	noKey := Default()
	noKey.News.Source = "newsapi"
	assert.Error(t, noKey.Validate(), "newsapi without key")

	noSecret := Default()
	noSecret.News.Source = "alpaca"
	noSecret.Alpaca.APIKey = "id"
	assert.Error(t, noSecret.Validate(), "alpaca without secret")
}
