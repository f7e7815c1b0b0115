package dashboard

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kabu/internal/domain"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "123.46", FormatPrice(123.456))
	assert.Equal(t, "2850.00", FormatPrice(2850))
	assert.Equal(t, "-", FormatPrice(0))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+2.00", FormatSigned(2))
	assert.Equal(t, "-0.75", FormatSigned(-0.749))
	assert.Equal(t, "+0.00", FormatSigned(0))
}

func TestFormatPercentChange(t *testing.T) {
	assert.Equal(t, "▲ +1.23%", FormatPercentChange(1.234))
	assert.Equal(t, "▼ -0.50%", FormatPercentChange(-0.5))
	assert.Equal(t, "▲ +0.00%", FormatPercentChange(0), "zero counts as up")
}

func TestSparkline(t *testing.T) {
	s := Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	assert.Equal(t, "▁▂▃▄▅▆▇█", s)

	flat := Sparkline([]float64{5, 5, 5}, 4)
	assert.Equal(t, 4, utf8.RuneCountInString(flat))
	assert.Equal(t, strings.Repeat("▄", 4), flat)

	long := make([]float64, 100)
	for i := range long {
		long[i] = float64(i)
	}
	down := Sparkline(long, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(down))
	assert.True(t, strings.HasPrefix(down, "▁"))
	assert.True(t, strings.HasSuffix(down, "█"))

	assert.Equal(t, "   ", Sparkline(nil, 3))
	assert.Equal(t, "", Sparkline([]float64{1}, 0))
}

func series(closes ...float64) domain.PriceSeries {
	tokyo := time.FixedZone("JST", 9*60*60)
	s := domain.PriceSeries{Symbol: "AAPL", Period: "1d", Interval: "5m"}
	base := time.Date(2024, 5, 2, 9, 0, 0, 0, tokyo)
	for i, c := range closes {
		s.Points = append(s.Points, domain.Point{Time: base.Add(time.Duration(i) * 5 * time.Minute), Close: c})
	}
	return s
}

func TestCardRow(t *testing.T) {
	q := domain.NewQuote("7203.T", "Toyota", 2850, 2900)
	c := NewCard(q, series(1, 3, 2))

	row := c.Row(6)
	assert.Equal(t, "7203", row.Name)
	assert.Equal(t, "2850.00", row.Price)
	assert.Equal(t, DownArrow, row.Change[:len(DownArrow)])
	assert.False(t, row.Up)
	assert.True(t, row.SparkUp, "last close above first")
	assert.Equal(t, 6, utf8.RuneCountInString(row.Spark))
	assert.Equal(t, DeleteColumns, runewidth.StringWidth(row.Delete))
}

func TestCardListOps(t *testing.T) {
	var l CardList
	for _, sym := range []domain.Symbol{"AAPL", "TSLA", "NVDA"} {
		l.Append(Card{Symbol: sym})
	}
	l.Append(Card{Symbol: "TSLA", Quote: domain.Quote{Price: 1}})
	require.Equal(t, 3, l.Len())
	assert.Equal(t, 1.0, l.At(1).Quote.Price, "re-append replaces in place")

	assert.Equal(t, 1, l.Remove("TSLA"))
	assert.Equal(t, -1, l.Remove("TSLA"))
	assert.Equal(t, 1, l.IndexOf("NVDA"))
}

func TestCardListHitTest(t *testing.T) {
	var l CardList
	l.Append(Card{Symbol: "AAPL"})
	l.Append(Card{Symbol: "TSLA"})

	idx, act := l.HitTest(1, 0)
	assert.Equal(t, 1, idx)
	assert.Equal(t, CardDelete, act)

	idx, act = l.HitTest(1, DeleteColumns-1)
	assert.Equal(t, CardDelete, act)

	idx, act = l.HitTest(0, DeleteColumns)
	assert.Equal(t, 0, idx)
	assert.Equal(t, CardSelect, act)

	idx, act = l.HitTest(2, 10)
	assert.Equal(t, -1, idx)
	assert.Equal(t, CardNone, act)
}

func TestDetailTitleAndChart(t *testing.T) {
	var d Detail
	d.Show("AAPL", domain.Periods[0], series(100, 101, 102))

	assert.Equal(t, "AAPL  current: 102.00 (+2.00, 2.00%)", d.Title())
	assert.True(t, d.Up())
	assert.Empty(t, d.ErrorText())

	chart := d.Chart(60, 8)
	assert.NotEmpty(t, chart)
	assert.Contains(t, chart, "102.00")

	axis := d.Axis(60)
	assert.Contains(t, axis, "05-02 09:00")
	assert.Contains(t, axis, "05-02 09:10 JST")
}

func TestDetailDownTitle(t *testing.T) {
	var d Detail
	d.Show("TSLA", domain.Periods[0], series(200, 190))
	assert.Equal(t, "TSLA  current: 190.00 (-10.00, -5.00%)", d.Title())
	assert.False(t, d.Up())
}

func TestDetailSinglePointChart(t *testing.T) {
	var d Detail
	d.Show("AAPL", domain.Periods[0], series(100))
	assert.NotEmpty(t, d.Chart(40, 5))
}

func TestDetailFailResetsChart(t *testing.T) {
	var d Detail
	d.Show("AAPL", domain.Periods[0], series(100, 101))
	d.Fail("AAPL", domain.Periods[1], errors.New("HTTP 500"))

	assert.True(t, d.Failed())
	assert.Equal(t, "fetch failed: HTTP 500", d.ErrorText())
	assert.True(t, d.Series.Empty())
	assert.Empty(t, d.Chart(60, 8))
	assert.Equal(t, "AAPL", d.Title())

	d.Reset()
	assert.True(t, d.Empty())
	assert.False(t, d.Failed())
}

func news(titles ...string) []domain.NewsItem {
	out := make([]domain.NewsItem, len(titles))
	for i, tt := range titles {
		out[i] = domain.NewsItem{Title: tt, Translated: tt, URL: "https://n.example/" + tt}
	}
	return out
}

func TestTickerLayout(t *testing.T) {
	tk := NewTicker(40, 4, 1)
	tk.SetItems(news("abc", "de"))

	require.Equal(t, 2, tk.Len())
	// "[1] abc" is 7 cells, then a 4-cell gap.
	assert.Equal(t, 0, tk.HitTest(0))
	assert.Equal(t, 0, tk.HitTest(6))
	assert.Equal(t, -1, tk.HitTest(7))
	assert.Equal(t, -1, tk.HitTest(10))
	assert.Equal(t, 1, tk.HitTest(11))

	view := tk.View()
	assert.Equal(t, 40, runewidth.StringWidth(view))
	assert.True(t, strings.HasPrefix(view, "[1] abc    [2] de"))
}

func TestTickerAdvanceAndWrap(t *testing.T) {
	tk := NewTicker(20, 2, 3)
	tk.SetItems(news("abcd")) // "[1] abcd" = 8 cells

	tk.Advance()
	assert.Equal(t, -3, tk.Offset())
	assert.Equal(t, 0, tk.HitTest(0))
	assert.True(t, strings.HasPrefix(tk.View(), "] abcd"))

	tk.Advance() // -6
	tk.Advance() // -9: trailing edge at -1, past column 0
	assert.Equal(t, 20, tk.Offset(), "re-enters at the right edge")
	assert.Equal(t, strings.Repeat(" ", 20), tk.View())
	assert.Equal(t, -1, tk.HitTest(0))

	tk.Advance()
	assert.Equal(t, 17, tk.Offset())
	assert.Equal(t, 0, tk.HitTest(18))
}

func TestTickerWideRunes(t *testing.T) {
	tk := NewTicker(10, 2, 1)
	tk.SetItems(news("トヨタ決算"))

	view := tk.View()
	assert.Equal(t, 10, runewidth.StringWidth(view))

	// Shift so a wide rune straddles the left edge.
	for i := 0; i < 5; i++ {
		tk.Advance()
	}
	view = tk.View()
	assert.Equal(t, 10, runewidth.StringWidth(view))
}

func TestTickerEmpty(t *testing.T) {
	tk := NewTicker(10, 2, 1)
	tk.SetItems(nil)
	tk.Advance()
	assert.Equal(t, 0, tk.Offset())
	assert.Equal(t, strings.Repeat(" ", 10), tk.View())
	assert.Equal(t, -1, tk.HitTest(0))
	_, ok := tk.Item(0)
	assert.False(t, ok)
}

func TestTickerClear(t *testing.T) {
	tk := NewTicker(10, 2, 1)
	tk.SetItems(news("a", "b"))
	tk.Advance()
	tk.Clear()
	assert.Zero(t, tk.Len())
	assert.Zero(t, tk.Offset())
	assert.Equal(t, -1, tk.HitTest(0))
}

func TestTickerItem(t *testing.T) {
	tk := NewTicker(10, 2, 1)
	tk.SetItems(news("a", "b"))
	n, ok := tk.Item(1)
	require.True(t, ok)
	assert.Equal(t, "https://n.example/b", n.URL)
}
