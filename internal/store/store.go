// Package store defines storage for kabu's persisted data: the watchlist
// (SQLite backend) and exported price series (Parquet files).
package store

import (
	"context"

	"kabu/internal/domain"
)

// SeriesStore persists and retrieves price series.
type SeriesStore interface {
	// WriteSeries merges the series into storage, replacing points that share
	// a timestamp.
	WriteSeries(ctx context.Context, series domain.PriceSeries) error

	// ReadSeries returns the stored series for symbol and period code.
	ReadSeries(ctx context.Context, symbol domain.Symbol, period string) (domain.PriceSeries, error)

	// ListSymbols returns all symbols that have stored series.
	ListSymbols(ctx context.Context) ([]string, error)
}

// WatchlistStore persists the ordered watchlist. It matches
// watchlist.Backend so an implementation can be handed to watchlist.NewStore.
type WatchlistStore interface {
	Load() (symbols []string, found bool, err error)
	Save(symbols []string) error
}
