// Package market wraps the market-data provider: point-in-time quotes,
// historical closing-price series, and free-text symbol search.
package market

import (
	"context"

	"kabu/internal/domain"
)

// Provider is the market-data surface the rest of kabu depends on.
type Provider interface {
	// Quote returns the current price for symbol. It fails with
	// domain.ErrDataUnavailable when the provider has no tradable price.
	Quote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error)

	// Series returns closing prices for symbol over periodCode, sampled at
	// the interval chosen by domain.IntervalFor. It fails with
	// domain.ErrDataUnavailable when the result set is empty.
	Series(ctx context.Context, symbol domain.Symbol, periodCode string) (domain.PriceSeries, error)

	// ResolveByName searches for a symbol matching free text. It fails with
	// domain.ErrInvalidInput when nothing matches.
	ResolveByName(ctx context.Context, text string) (domain.Symbol, error)
}
