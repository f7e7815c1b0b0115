package dashboard

import (
	"kabu/internal/domain"
)

// DeleteColumns is the width of the delete affordance at the start of every
// card row. A click in columns [0, DeleteColumns) deletes; anything else
// selects.
const DeleteColumns = 3

// Card is the compact per-symbol summary shown in the list pane.
type Card struct {
	Symbol domain.Symbol
	Quote  domain.Quote
	// Spark holds the intraday closes used for the sparkline.
	Spark   []float64
	SparkUp bool
}

// NewCard builds a card from a quote and its intraday series.
func NewCard(q domain.Quote, intraday domain.PriceSeries) Card {
	return Card{
		Symbol:  q.Symbol,
		Quote:   q,
		Spark:   intraday.Closes(),
		SparkUp: intraday.Up(),
	}
}

// Name returns the display name: the symbol without the Tokyo suffix.
func (c Card) Name() string { return c.Symbol.DisplayName() }

// Up reports whether the day's change is non-negative.
func (c Card) Up() bool { return c.Quote.Up() }

// CardRow is the laid-out text of one card. Styling is left to the caller.
type CardRow struct {
	Delete  string
	Name    string
	Price   string
	Change  string
	Spark   string
	Up      bool
	SparkUp bool
}

// Row lays out the card with a sparkline of sparkWidth cells.
func (c Card) Row(sparkWidth int) CardRow {
	return CardRow{
		Delete:  " × ",
		Name:    c.Name(),
		Price:   FormatPrice(c.Quote.Price),
		Change:  FormatPercentChange(c.Quote.ChangePercent),
		Spark:   Sparkline(c.Spark, sparkWidth),
		Up:      c.Up(),
		SparkUp: c.SparkUp,
	}
}

// CardAction is the result of a click on a card row.
type CardAction int

const (
	CardNone CardAction = iota
	CardSelect
	CardDelete
)

// CardList is the ordered set of cards, mirroring watchlist order for the
// symbols whose card could be built.
type CardList struct {
	cards []Card
}

// Cards returns the cards in display order.
func (l *CardList) Cards() []Card { return l.cards }

// Len returns the number of cards.
func (l *CardList) Len() int { return len(l.cards) }

// At returns the card at i.
func (l *CardList) At(i int) Card { return l.cards[i] }

// Reset removes all cards.
func (l *CardList) Reset() { l.cards = nil }

// Append adds c at the end, replacing any existing card for the same symbol.
func (l *CardList) Append(c Card) {
	if i := l.IndexOf(c.Symbol); i >= 0 {
		l.cards[i] = c
		return
	}
	l.cards = append(l.cards, c)
}

// Remove deletes the card for sym and returns its former index, or -1.
func (l *CardList) Remove(sym domain.Symbol) int {
	i := l.IndexOf(sym)
	if i < 0 {
		return -1
	}
	l.cards = append(l.cards[:i], l.cards[i+1:]...)
	return i
}

// IndexOf returns the index of the card for sym, or -1.
func (l *CardList) IndexOf(sym domain.Symbol) int {
	for i, c := range l.cards {
		if c.Symbol == sym {
			return i
		}
	}
	return -1
}

// HitTest maps a click at (row, col), relative to the first card row, to a
// card index and action.
func (l *CardList) HitTest(row, col int) (int, CardAction) {
	if row < 0 || row >= len(l.cards) || col < 0 {
		return -1, CardNone
	}
	if col < DeleteColumns {
		return row, CardDelete
	}
	return row, CardSelect
}
