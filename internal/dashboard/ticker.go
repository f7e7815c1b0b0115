package dashboard

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"kabu/internal/domain"
)

// TickerItem is one headline placed on the strip.
type TickerItem struct {
	News  domain.NewsItem
	Text  string
	Start int // cell offset from the strip's left edge
	Width int // cells
}

// Ticker is a horizontally scrolling headline strip. The strip's left edge
// sits at Offset cells from the viewport's left edge; Step moves it left.
type Ticker struct {
	items    []TickerItem
	total    int
	offset   int
	viewport int
	gap      int
	step     int
}

// NewTicker creates an empty ticker.
func NewTicker(viewport, gap, step int) *Ticker {
	if gap < 1 {
		gap = 1
	}
	if step < 1 {
		step = 1
	}
	return &Ticker{viewport: viewport, gap: gap, step: step}
}

// SetItems lays headlines out left to right and restarts the strip at the
// left edge. Each headline is prefixed with its 1-based number.
func (t *Ticker) SetItems(news []domain.NewsItem) {
	t.items = t.items[:0]
	pos := 0
	for i, n := range news {
		text := fmt.Sprintf("[%d] %s", i+1, flatten(n.Text()))
		w := runewidth.StringWidth(text)
		t.items = append(t.items, TickerItem{News: n, Text: text, Start: pos, Width: w})
		pos += w + t.gap
	}
	t.total = 0
	if len(t.items) > 0 {
		t.total = pos - t.gap
	}
	t.offset = 0
}

// Clear removes all headlines.
func (t *Ticker) Clear() { t.SetItems(nil) }

// Len returns the number of headlines.
func (t *Ticker) Len() int { return len(t.items) }

// Item returns the headline at i.
func (t *Ticker) Item(i int) (domain.NewsItem, bool) {
	if i < 0 || i >= len(t.items) {
		return domain.NewsItem{}, false
	}
	return t.items[i].News, true
}

// Offset returns the strip's current left edge.
func (t *Ticker) Offset() int { return t.offset }

// Resize sets the viewport width.
func (t *Ticker) Resize(viewport int) { t.viewport = viewport }

// Advance shifts the strip left by one step. Once its trailing edge has
// passed column 0 it re-enters at the viewport's right edge.
func (t *Ticker) Advance() {
	if len(t.items) == 0 {
		return
	}
	t.offset -= t.step
	if t.offset+t.total < 0 {
		t.offset = t.viewport
	}
}

// HitTest returns the index of the headline under viewport column col, or -1.
func (t *Ticker) HitTest(col int) int {
	for i, it := range t.items {
		left := t.offset + it.Start
		if col >= left && col < left+it.Width {
			return i
		}
	}
	return -1
}

// View renders exactly viewport cells of the strip. Wide runes cut by
// either edge of the viewport are replaced by spaces.
func (t *Ticker) View() string {
	if t.viewport <= 0 {
		return ""
	}
	cells := make([]string, t.viewport)
	for i := range cells {
		cells[i] = " "
	}
	for _, it := range t.items {
		x := t.offset + it.Start
		if x >= t.viewport {
			break
		}
		for _, r := range it.Text {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if x >= 0 && x+w <= t.viewport {
				cells[x] = string(r)
				for c := x + 1; c < x+w; c++ {
					cells[c] = "" // continuation of a wide rune
				}
			}
			x += w
			if x >= t.viewport {
				break
			}
		}
	}
	return strings.Join(cells, "")
}

// flatten collapses whitespace so headlines stay on one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
