package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve on hosts without a zoneinfo database.

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for kabu.
type Config struct {
	Storage Storage `yaml:"storage"`
	Market  Market  `yaml:"market"`
	News    News    `yaml:"news"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	UI      UI      `yaml:"ui"`
	Logging Logging `yaml:"logging"`
}

// Storage holds paths for watchlist persistence and exports.
type Storage struct {
	Backend       string `yaml:"backend"` // "json" or "sqlite"
	WatchlistPath string `yaml:"watchlist_path"`
	SQLitePath    string `yaml:"sqlite_path"`
	DataDir       string `yaml:"data_dir"`
}

// Market configures the market-data provider.
type Market struct {
	ChartURL    string        `yaml:"chart_url"`
	SearchURL   string        `yaml:"search_url"`
	Timezone    string        `yaml:"timezone"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// News configures the headline source and the translator.
type News struct {
	Source       string `yaml:"source"` // "newsapi", "google" or "alpaca"
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Language     string `yaml:"language"`
	MaxResults   int    `yaml:"max_results"`
	TranslateTo  string `yaml:"translate_to"`
	TranslateURL string `yaml:"translate_url"`
}

// Alpaca holds credentials for the Alpaca news source.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// UI controls the terminal views.
type UI struct {
	DefaultSymbols []string      `yaml:"default_symbols"`
	DefaultPeriod  string        `yaml:"default_period"`
	SparklineWidth int           `yaml:"sparkline_width"`
	TickerInterval time.Duration `yaml:"ticker_interval"`
	TickerStep     int           `yaml:"ticker_step"`
	TickerGap      int           `yaml:"ticker_gap"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DefaultSymbols is the watchlist used when nothing has been persisted yet.
var DefaultSymbols = []string{"AAPL", "TSLA", "NVDA", "7203.T", "9984.T"}

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend:       "json",
			WatchlistPath: "stock_list.json",
			SQLitePath:    "kabu.db",
			DataDir:       "data",
		},
		Market: Market{
			ChartURL:    "https://query1.finance.yahoo.com",
			SearchURL:   "https://query2.finance.yahoo.com",
			Timezone:    "Asia/Tokyo",
			HTTPTimeout: 30 * time.Second,
		},
		News: News{
			BaseURL:      "https://newsapi.org",
			Language:     "en",
			MaxResults:   5,
			TranslateTo:  "ja",
			TranslateURL: "https://translate.googleapis.com",
		},
		UI: UI{
			DefaultSymbols: append([]string(nil), DefaultSymbols...),
			DefaultPeriod:  "1d",
			SparklineWidth: 20,
			TickerInterval: 100 * time.Millisecond,
			TickerStep:     1,
			TickerGap:      6,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, loads a .env file from the working directory if one exists, and
// then applies environment variable overrides. A missing config file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; plain environment variables work without it.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	applyFallbacks(cfg)

	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be json or sqlite, got %q", c.Storage.Backend)
	}
	switch c.News.Source {
	case "newsapi", "google", "alpaca":
	default:
		return fmt.Errorf("news.source must be newsapi, google or alpaca, got %q", c.News.Source)
	}
	if c.News.Source == "newsapi" && c.News.APIKey == "" {
		return fmt.Errorf("news.api_key is required for the newsapi source")
	}
	if c.News.Source == "alpaca" && (c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "") {
		return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required for the alpaca source")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KABU_WATCHLIST"); v != "" {
		cfg.Storage.WatchlistPath = v
	}
	if v := os.Getenv("KABU_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.News.APIKey = v
	}
	if v := os.Getenv("KABU_TRANSLATE_TO"); v != "" {
		cfg.News.TranslateTo = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars, the canonical names used by the SDK.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyFallbacks fills values that depend on other settings.
func applyFallbacks(cfg *Config) {
	if cfg.News.Source == "" {
		if cfg.News.APIKey != "" {
			cfg.News.Source = "newsapi"
		} else {
			cfg.News.Source = "google"
		}
	}
	if cfg.News.MaxResults <= 0 {
		cfg.News.MaxResults = 5
	}
	if len(cfg.UI.DefaultSymbols) == 0 {
		cfg.UI.DefaultSymbols = append([]string(nil), DefaultSymbols...)
	}
	if cfg.UI.TickerStep <= 0 {
		cfg.UI.TickerStep = 1
	}
	if cfg.UI.TickerInterval <= 0 {
		cfg.UI.TickerInterval = 100 * time.Millisecond
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = fmt.Sprintf("%s/kabu-%s.log", os.TempDir(), time.Now().Format("2006-01-02"))
	}
}
