// Package news fetches recent headlines for a company from one of several
// sources and translates them best-effort for display.
package news

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kabu/internal/domain"
)

// DefaultMaxResults is the number of headlines requested when the caller
// passes a non-positive max.
const DefaultMaxResults = 5

// Headline is a single article headline from any source.
type Headline struct {
	Title     string
	URL       string
	Published time.Time
	Source    string
}

// Query identifies the company to search news for.
type Query struct {
	Symbol domain.Symbol
	Name   string // company name; may be empty
}

// Text returns the free-text search term: the company name when known,
// otherwise the symbol.
func (q Query) Text() string {
	if n := strings.TrimSpace(q.Name); n != "" {
		return n
	}
	return q.Symbol.String()
}

// Source fetches up to max headlines, most recent first.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query, max int) ([]Headline, error)
}

// Translator translates text into its configured target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Translation is the result of a best-effort translation. Translated is
// false when Text is the untouched original.
type Translation struct {
	Text       string
	Original   string
	Translated bool
}

// Client combines a Source with an optional Translator. Neither Headlines nor
// Translate ever return errors: failures are logged and degrade to empty or
// untranslated output.
type Client struct {
	source     Source
	translator Translator
	max        int
	log        *slog.Logger
}

// NewClient creates a Client. translator may be nil to disable translation.
func NewClient(source Source, translator Translator, max int, log *slog.Logger) *Client {
	if max <= 0 {
		max = DefaultMaxResults
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		source:     source,
		translator: translator,
		max:        max,
		log:        log.With("component", "news", "source", source.Name()),
	}
}

// Headlines returns up to max recent headlines for q. On any failure it logs
// a warning and returns an empty slice.
func (c *Client) Headlines(ctx context.Context, q Query, max int) []Headline {
	if max <= 0 {
		max = c.max
	}
	items, err := c.source.Fetch(ctx, q, max)
	if err != nil {
		c.log.Warn("fetching headlines", "query", q.Text(), "error", err)
		return []Headline{}
	}
	if len(items) > max {
		items = items[:max]
	}
	c.log.Debug("fetched headlines", "query", q.Text(), "count", len(items))
	return items
}

// Translate translates text, falling back to the original on failure or
// empty output.
func (c *Client) Translate(ctx context.Context, text string) Translation {
	out := Translation{Text: text, Original: text}
	if c.translator == nil || strings.TrimSpace(text) == "" {
		return out
	}
	translated, err := c.translator.Translate(ctx, text)
	if err != nil {
		c.log.Warn("translating headline", "error", err)
		return out
	}
	if strings.TrimSpace(translated) == "" {
		c.log.Warn("translation returned empty text")
		return out
	}
	out.Text = translated
	out.Translated = true
	return out
}

// Localize translates each headline and returns display items in order.
func (c *Client) Localize(ctx context.Context, headlines []Headline) []domain.NewsItem {
	items := make([]domain.NewsItem, 0, len(headlines))
	for _, h := range headlines {
		tr := c.Translate(ctx, h.Title)
		items = append(items, domain.NewsItem{
			Title:      h.Title,
			Translated: tr.Text,
			URL:        h.URL,
		})
	}
	return items
}

// Options configures NewSource.
type Options struct {
	Source     string // newsapi | google | alpaca
	APIKey     string // newsapi key
	BaseURL    string // newsapi base URL
	Language   string
	AlpacaKey  string
	AlpacaSec  string
	AlpacaURL  string
	HTTPClient *http.Client
}

func httpClientOr(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}
