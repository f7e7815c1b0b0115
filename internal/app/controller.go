// Package app holds the controller that ties the watchlist, market data and
// news together behind the operations the terminal UI invokes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kabu/internal/dashboard"
	"kabu/internal/domain"
	"kabu/internal/news"
	"kabu/internal/watchlist"
)

// MarketData fetches quotes and price series.
type MarketData interface {
	Quote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error)
	Series(ctx context.Context, symbol domain.Symbol, periodCode string) (domain.PriceSeries, error)
}

// Resolver turns user input into a symbol.
type Resolver interface {
	Resolve(ctx context.Context, input string) (domain.Symbol, error)
}

// NewsService fetches and localizes headlines. Implementations never fail.
type NewsService interface {
	Headlines(ctx context.Context, q news.Query, max int) []news.Headline
	Localize(ctx context.Context, headlines []news.Headline) []domain.NewsItem
}

// Watchlist is the persisted symbol list.
type Watchlist interface {
	Symbols() []domain.Symbol
	Contains(sym domain.Symbol) bool
	Add(sym domain.Symbol) error
	Remove(sym domain.Symbol) error
}

// NoticeKind distinguishes informational notices from errors.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

// Notice is a message the UI shows as a modal.
type Notice struct {
	Kind    NoticeKind
	Message string
}

func infoNotice(format string, args ...any) *Notice {
	return &Notice{Kind: NoticeInfo, Message: fmt.Sprintf(format, args...)}
}

func errorNotice(format string, args ...any) *Notice {
	return &Notice{Kind: NoticeError, Message: fmt.Sprintf(format, args...)}
}

// Options tunes the controller.
type Options struct {
	DefaultPeriod string // period code, e.g. "1d"
	NewsMax       int
}

// Controller owns the application state. It is not safe for concurrent use;
// the UI runs at most one operation at a time and renders from Snapshot.
type Controller struct {
	market   MarketData
	resolver Resolver
	news     NewsService
	list     Watchlist
	log      *slog.Logger
	newsMax  int

	cards    dashboard.CardList
	detail   dashboard.Detail
	headline []domain.NewsItem
	newsSeq  int
	selected domain.Symbol
	period   int
}

// New creates a Controller. Call Start to build the initial view.
func New(market MarketData, resolver Resolver, newsSvc NewsService, list Watchlist, opts Options, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	period, ok := domain.PeriodByCode(opts.DefaultPeriod)
	if !ok {
		period = 0
	}
	return &Controller{
		market:   market,
		resolver: resolver,
		news:     newsSvc,
		list:     list,
		log:      log.With("component", "controller"),
		newsMax:  opts.NewsMax,
		period:   period,
	}
}

// Start builds a card for every watchlist symbol and selects the first one.
func (c *Controller) Start(ctx context.Context) {
	c.cards.Reset()
	symbols := c.list.Symbols()
	for _, sym := range symbols {
		c.buildCard(ctx, sym)
	}
	c.log.Info("started", "symbols", len(symbols), "cards", c.cards.Len())
	if len(symbols) > 0 {
		c.Select(ctx, symbols[0])
	}
}

// Add resolves input, validates it with a quote fetch and appends it to the
// watchlist. It returns nil on success.
func (c *Controller) Add(ctx context.Context, input string) *Notice {
	sym, err := c.resolver.Resolve(ctx, input)
	if err != nil {
		c.log.Warn("resolving symbol", "input", input, "error", err)
		return errorNotice("symbol not found: %s", input)
	}
	if c.list.Contains(sym) {
		return infoNotice("%s is already in the watchlist", sym)
	}
	if _, err := c.market.Quote(ctx, sym); err != nil {
		c.log.Warn("validating symbol", "symbol", sym, "error", err)
		return errorNotice("symbol not found: %s", input)
	}

	var notice *Notice
	if err := c.list.Add(sym); err != nil {
		if errors.Is(err, watchlist.ErrDuplicate) {
			return infoNotice("%s is already in the watchlist", sym)
		}
		// The symbol is tracked in memory even though the save failed.
		notice = errorNotice("could not save the watchlist: %v", err)
	}
	c.buildCard(ctx, sym)
	return notice
}

// Select makes sym the current selection and rebuilds the detail chart and
// the news strip.
func (c *Controller) Select(ctx context.Context, sym domain.Symbol) {
	c.selected = sym
	c.refreshDetail(ctx)
	c.refreshNews(ctx)
}

// Delete removes sym when confirmed. If sym was selected, the symbol that
// moved into its position is selected, else the previous one, else nothing.
func (c *Controller) Delete(ctx context.Context, sym domain.Symbol, confirmed bool) *Notice {
	if !confirmed {
		return nil
	}
	pos := indexOf(c.list.Symbols(), sym)
	var notice *Notice
	if err := c.list.Remove(sym); err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			c.cards.Remove(sym)
			return errorNotice("%s is not in the watchlist", sym)
		}
		notice = errorNotice("could not save the watchlist: %v", err)
	}
	c.cards.Remove(sym)
	c.log.Info("deleted", "symbol", sym)

	if c.selected != sym {
		return notice
	}
	if next, ok := c.neighbour(pos); ok {
		c.Select(ctx, next)
	} else {
		c.clearSelection()
	}
	return notice
}

// ChangePeriod switches the chart period and rebuilds only the detail view.
func (c *Controller) ChangePeriod(ctx context.Context, index int) {
	if index < 0 || index >= len(domain.Periods) {
		return
	}
	c.period = index
	if c.selected != "" {
		c.refreshDetail(ctx)
	}
}

// Snapshot is an immutable copy of the state the UI renders.
type Snapshot struct {
	Cards    []dashboard.Card
	Detail   dashboard.Detail
	News     []domain.NewsItem
	NewsSeq  int // increments every time News is rebuilt
	Selected domain.Symbol
	Period   int
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	cards := make([]dashboard.Card, c.cards.Len())
	copy(cards, c.cards.Cards())
	items := make([]domain.NewsItem, len(c.headline))
	copy(items, c.headline)
	return Snapshot{
		Cards:    cards,
		Detail:   c.detail,
		News:     items,
		NewsSeq:  c.newsSeq,
		Selected: c.selected,
		Period:   c.period,
	}
}

// Selected returns the selected symbol, or "" when nothing is selected.
func (c *Controller) Selected() domain.Symbol { return c.selected }

// Period returns the current chart period.
func (c *Controller) Period() domain.Period { return domain.Periods[c.period] }

func (c *Controller) buildCard(ctx context.Context, sym domain.Symbol) {
	q, err := c.market.Quote(ctx, sym)
	if err != nil {
		c.log.Warn("skipping card", "symbol", sym, "stage", "quote", "error", err)
		return
	}
	intraday, err := c.market.Series(ctx, sym, domain.IntradayPeriod)
	if err != nil {
		c.log.Warn("skipping card", "symbol", sym, "stage", "series", "error", err)
		return
	}
	q.Symbol = sym
	c.cards.Append(dashboard.NewCard(q, intraday))
}

func (c *Controller) refreshDetail(ctx context.Context) {
	c.detail.Reset()
	p := domain.Periods[c.period]
	series, err := c.market.Series(ctx, c.selected, p.Code)
	if err != nil {
		c.log.Warn("detail fetch failed", "symbol", c.selected, "period", p.Code, "error", err)
		c.detail.Fail(c.selected, p, err)
		return
	}
	c.detail.Show(c.selected, p, series)
}

func (c *Controller) refreshNews(ctx context.Context) {
	q := news.Query{Symbol: c.selected}
	if i := c.cards.IndexOf(c.selected); i >= 0 {
		q.Name = c.cards.At(i).Quote.Name
	}
	c.headline = c.news.Localize(ctx, c.news.Headlines(ctx, q, c.newsMax))
	c.newsSeq++
}

func (c *Controller) clearSelection() {
	c.selected = ""
	c.detail.Reset()
	c.headline = nil
	c.newsSeq++
}

// neighbour picks the replacement selection after the symbol at pos was
// removed, using watchlist order since cards may be missing for symbols that
// failed to load.
func (c *Controller) neighbour(pos int) (domain.Symbol, bool) {
	symbols := c.list.Symbols()
	if len(symbols) == 0 {
		return "", false
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= len(symbols) {
		pos = len(symbols) - 1
	}
	return symbols[pos], true
}

func indexOf(symbols []domain.Symbol, sym domain.Symbol) int {
	for i, s := range symbols {
		if s == sym {
			return i
		}
	}
	return -1
}
