package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kabu/internal/config"
	"kabu/internal/market"
	"kabu/internal/news"
	"kabu/internal/store"
	"kabu/internal/watchlist"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenWatchlist opens the configured watchlist backend and loads the store.
// The returned Closer releases the backend.
func OpenWatchlist(cfg *config.Config, log *slog.Logger) (*watchlist.Store, io.Closer, error) {
	var (
		backend watchlist.Backend
		closer  io.Closer = nopCloser{}
	)
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := store.NewSQLiteWatchlist(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", cfg.Storage.SQLitePath, err)
		}
		backend, closer = db, db
	case "json", "":
		backend = watchlist.NewJSONFile(cfg.Storage.WatchlistPath)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	wl, err := watchlist.NewStore(backend, cfg.UI.DefaultSymbols, log)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return wl, closer, nil
}

// NewMarket builds the Yahoo market-data client from cfg.
func NewMarket(cfg *config.Config, log *slog.Logger) (*market.YahooClient, error) {
	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return market.NewYahooClient(market.YahooOptions{
		ChartURL:  cfg.Market.ChartURL,
		SearchURL: cfg.Market.SearchURL,
		Location:  loc,
		Timeout:   cfg.Market.HTTPTimeout,
		Logger:    log,
	})
}

// NewNews builds the news client: the configured source plus the Google
// translator when a target language is set.
func NewNews(cfg *config.Config, log *slog.Logger) (*news.Client, error) {
	httpClient := &http.Client{Timeout: cfg.Market.HTTPTimeout}
	src, err := news.NewSource(news.Options{
		Source:     cfg.News.Source,
		APIKey:     cfg.News.APIKey,
		BaseURL:    cfg.News.BaseURL,
		Language:   cfg.News.Language,
		AlpacaKey:  cfg.Alpaca.APIKey,
		AlpacaSec:  cfg.Alpaca.APISecret,
		AlpacaURL:  cfg.Alpaca.DataURL,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	var tr news.Translator
	if cfg.News.TranslateTo != "" {
		tr = news.NewGoogleTranslator(cfg.News.TranslateURL, cfg.News.TranslateTo, httpClient)
	}
	return news.NewClient(src, tr, cfg.News.MaxResults, log), nil
}
