package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"

	"kabu/internal/domain"
)

// yAxisWidth approximates the width asciigraph spends on axis labels.
const yAxisWidth = 10

// Detail is the chart pane for the selected symbol and period. It is reset
// before every rebuild so a failed fetch never leaves stale data behind.
type Detail struct {
	Symbol domain.Symbol
	Period domain.Period
	Series domain.PriceSeries
	Err    error
}

// Reset clears the chart, title and error.
func (d *Detail) Reset() {
	*d = Detail{}
}

// Show replaces the view with a fetched series.
func (d *Detail) Show(sym domain.Symbol, p domain.Period, s domain.PriceSeries) {
	d.Reset()
	d.Symbol, d.Period, d.Series = sym, p, s
}

// Fail replaces the view with an error.
func (d *Detail) Fail(sym domain.Symbol, p domain.Period, err error) {
	d.Reset()
	d.Symbol, d.Period, d.Err = sym, p, err
}

// Empty reports whether nothing is selected.
func (d *Detail) Empty() bool { return d.Symbol == "" }

// Failed reports whether the last rebuild failed.
func (d *Detail) Failed() bool { return d.Err != nil }

// Up reports whether the series closed at or above its first close.
func (d *Detail) Up() bool { return d.Series.Up() }

// Title returns "SYMBOL  current: 123.45 (+1.23, 1.01%)", or just the symbol
// when there is no series to summarize.
func (d *Detail) Title() string {
	if d.Series.Empty() {
		return d.Symbol.String()
	}
	change, pct := d.Series.Change()
	return fmt.Sprintf("%s  current: %.2f (%s, %.2f%%)",
		d.Symbol, d.Series.Last().Close, FormatSigned(change), pct)
}

// ErrorText returns the inline failure message shown in place of the chart.
func (d *Detail) ErrorText() string {
	if d.Err == nil {
		return ""
	}
	return "fetch failed: " + d.Err.Error()
}

// Chart renders the closes as a line chart fitting width x height cells.
func (d *Detail) Chart(width, height int) string {
	if d.Series.Empty() || width <= yAxisWidth || height < 2 {
		return ""
	}
	closes := d.Series.Closes()
	if len(closes) == 1 {
		closes = append(closes, closes[0])
	}
	color := asciigraph.Green
	if !d.Up() {
		color = asciigraph.Red
	}
	return asciigraph.Plot(closes,
		asciigraph.Height(height),
		asciigraph.Width(width-yAxisWidth),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(color),
	)
}

// Axis renders the first and last timestamps at either end of a width-cell
// line, in the series' own location.
func (d *Detail) Axis(width int) string {
	if d.Series.Empty() {
		return ""
	}
	layout := "2006-01-02"
	if d.Series.Interval != "1d" {
		layout = "01-02 15:04"
	}
	first := d.Series.First().Time.Format(layout)
	last := d.Series.Last().Time.Format(layout) + " " + zoneAbbrev(d.Series.Last().Time)

	gap := width - yAxisWidth - runewidth.StringWidth(first) - runewidth.StringWidth(last)
	if gap < 1 {
		return first + " " + last
	}
	return strings.Repeat(" ", yAxisWidth) + first + strings.Repeat(" ", gap) + last
}

func zoneAbbrev(t time.Time) string {
	name, _ := t.Zone()
	return name
}
