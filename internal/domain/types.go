// Package domain defines the core value types shared across kabu: symbols,
// quotes, price series, news items and the selectable chart periods.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Symbol is a canonical exchange ticker, e.g. "AAPL" or "7203.T".
type Symbol string

// JapanSuffix is appended to four-digit Tokyo Stock Exchange codes.
const JapanSuffix = ".T"

// NormalizeSymbol trims and upper-cases s.
func NormalizeSymbol(s string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(s)))
}

// String returns the symbol text.
func (s Symbol) String() string { return string(s) }

// DisplayName strips the Japan market suffix for compact display.
func (s Symbol) DisplayName() string {
	return strings.TrimSuffix(string(s), JapanSuffix)
}

// Quote is a point-in-time price lookup. It is fetched per render and never
// stored.
type Quote struct {
	Symbol        Symbol
	Name          string // long or short company name, may be empty
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
}

// Up reports whether the quote should use "up" styling (non-negative change).
func (q Quote) Up() bool { return q.ChangePercent >= 0 }

// NewQuote builds a Quote from the current price and the previous close,
// computing change and change percent with decimal arithmetic. A zero
// previous close yields zero change.
func NewQuote(symbol Symbol, name string, price, previousClose float64) Quote {
	q := Quote{Symbol: symbol, Name: name, Price: price, PreviousClose: previousClose}
	if previousClose == 0 {
		return q
	}
	change, pct := changeBetween(previousClose, price)
	q.Change, q.ChangePercent = change, pct
	return q
}

// Point is one (timestamp, closing price) pair.
type Point struct {
	Time  time.Time
	Close float64
}

// PriceSeries is an ordered sequence of closes for a symbol over a period.
type PriceSeries struct {
	Symbol   Symbol
	Period   string // provider period code, e.g. "1d", "1mo"
	Interval string // provider interval code, e.g. "5m", "1d"
	Points   []Point
}

// Empty reports whether the series has no points.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// Closes returns the closing prices in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// First returns the first point. The series must not be empty.
func (s PriceSeries) First() Point { return s.Points[0] }

// Last returns the last point. The series must not be empty.
func (s PriceSeries) Last() Point { return s.Points[len(s.Points)-1] }

// Change returns the absolute and percent change from the first to the last
// close. An empty series or a zero first close yields zeros.
func (s PriceSeries) Change() (change, percent float64) {
	if s.Empty() || s.First().Close == 0 {
		return 0, 0
	}
	return changeBetween(s.First().Close, s.Last().Close)
}

// Up reports whether the last close is at or above the first close.
func (s PriceSeries) Up() bool {
	if s.Empty() {
		return true
	}
	return s.Last().Close >= s.First().Close
}

func changeBetween(base, current float64) (float64, float64) {
	b := decimal.NewFromFloat(base)
	c := decimal.NewFromFloat(current)
	diff := c.Sub(b)
	pct := diff.Div(b).Mul(decimal.NewFromInt(100))
	return diff.InexactFloat64(), pct.InexactFloat64()
}

// NewsItem is a headline with its translation and source link.
type NewsItem struct {
	Title      string // original headline
	Translated string // translated headline; equals Title when translation fell back
	URL        string
}

// Text returns the headline to display.
func (n NewsItem) Text() string {
	if n.Translated != "" {
		return n.Translated
	}
	return n.Title
}
