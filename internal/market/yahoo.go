package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"kabu/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*YahooClient)(nil)

// YahooClient implements Provider using the Yahoo Finance public chart and
// search endpoints.
type YahooClient struct {
	chartURL  string
	searchURL string
	loc       *time.Location
	http      *http.Client
	log       *slog.Logger
}

// YahooOptions configures a YahooClient. Zero values select the public
// endpoints, Asia/Tokyo and a 30s timeout.
type YahooOptions struct {
	ChartURL  string
	SearchURL string
	Location  *time.Location
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewYahooClient creates a YahooClient.
func NewYahooClient(opts YahooOptions) (*YahooClient, error) {
	if opts.ChartURL == "" {
		opts.ChartURL = "https://query1.finance.yahoo.com"
	}
	if opts.SearchURL == "" {
		opts.SearchURL = "https://query2.finance.yahoo.com"
	}
	if opts.Location == nil {
		loc, err := time.LoadLocation("Asia/Tokyo")
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
		opts.Location = loc
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &YahooClient{
		chartURL:  strings.TrimRight(opts.ChartURL, "/"),
		searchURL: strings.TrimRight(opts.SearchURL, "/"),
		loc:       opts.Location,
		http:      &http.Client{Timeout: opts.Timeout},
		log:       opts.Logger.With("component", "yahoo"),
	}, nil
}

// Location returns the zone every series timestamp is converted to.
func (c *YahooClient) Location() *time.Location { return c.loc }

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// yahooChart is the response structure from the Yahoo Finance chart API.
// Prices are pointers so that JSON nulls stay distinguishable from zero.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooMeta struct {
	Symbol             string   `json:"symbol"`
	LongName           string   `json:"longName"`
	ShortName          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	PreviousClose      *float64 `json:"previousClose"`
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
	} `json:"quotes"`
}

// ---------------------------------------------------------------------------
// Provider implementation
// ---------------------------------------------------------------------------

// Quote fetches the intraday chart and reads the current price from its
// metadata block.
func (c *YahooClient) Quote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error) {
	chart, err := c.fetchChart(ctx, symbol, domain.IntradayPeriod, domain.IntervalFor(domain.IntradayPeriod))
	if err != nil {
		return domain.Quote{}, err
	}
	if len(chart.Chart.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("%s: no chart result: %w", symbol, domain.ErrDataUnavailable)
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return domain.Quote{}, fmt.Errorf("%s: no tradable price: %w", symbol, domain.ErrDataUnavailable)
	}

	var prev float64
	switch {
	case meta.ChartPreviousClose != nil:
		prev = *meta.ChartPreviousClose
	case meta.PreviousClose != nil:
		prev = *meta.PreviousClose
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	// meta.symbol may name an alias; the quote keeps the requested symbol so
	// callers can match it against the watchlist.
	return domain.NewQuote(symbol, name, *meta.RegularMarketPrice, prev), nil
}

// Series fetches closing prices for the period. Null closes (halts,
// holidays) are dropped and timestamps are converted to the display zone.
func (c *YahooClient) Series(ctx context.Context, symbol domain.Symbol, periodCode string) (domain.PriceSeries, error) {
	interval := domain.IntervalFor(periodCode)
	chart, err := c.fetchChart(ctx, symbol, periodCode, interval)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	series := domain.PriceSeries{Symbol: symbol, Period: periodCode, Interval: interval}
	if len(chart.Chart.Result) == 0 {
		return series, fmt.Errorf("%s %s: no chart result: %w", symbol, periodCode, domain.ErrDataUnavailable)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, fmt.Errorf("%s %s: no quote block: %w", symbol, periodCode, domain.ErrDataUnavailable)
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]domain.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, domain.Point{
			Time:  time.Unix(ts, 0).In(c.loc),
			Close: *closes[i],
		})
	}
	if len(points) == 0 {
		return series, fmt.Errorf("%s %s: empty series: %w", symbol, periodCode, domain.ErrDataUnavailable)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	series.Points = points
	return series, nil
}

// ResolveByName asks the search endpoint for the best match for text.
func (c *YahooClient) ResolveByName(ctx context.Context, text string) (domain.Symbol, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("quotesCount", "1")
	q.Set("newsCount", "0")
	u := c.searchURL + "/v1/finance/search?" + q.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}

	var res yahooSearch
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("yahoo search decode: %w: %w", err, domain.ErrProvider)
	}
	for _, q := range res.Quotes {
		if q.Symbol != "" {
			c.log.Debug("resolved by name", "text", text, "symbol", q.Symbol)
			return domain.NormalizeSymbol(q.Symbol), nil
		}
	}
	return "", fmt.Errorf("no symbol matches %q: %w", text, domain.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

func (c *YahooClient) fetchChart(ctx context.Context, symbol domain.Symbol, rng, interval string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.chartURL, url.PathEscape(symbol.String()), url.QueryEscape(interval), url.QueryEscape(rng))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w: %w", err, domain.ErrProvider)
	}
	if chart.Chart.Error != nil {
		// "Not Found" means the symbol does not exist, which is a data
		// problem rather than a transport one.
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo: %s: %w", chart.Chart.Error.Description, domain.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, domain.ErrProvider)
	}
	return &chart, nil
}

func (c *YahooClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w: %w", err, domain.ErrProvider)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w: %w", err, domain.ErrProvider)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w: %w", err, domain.ErrProvider)
	}
	if resp.StatusCode == http.StatusNotFound {
		// The chart endpoint answers 404 with an error payload for unknown
		// symbols; let the caller decode it.
		return body, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d: %w", resp.StatusCode, domain.ErrProvider)
	}
	return body, nil
}
