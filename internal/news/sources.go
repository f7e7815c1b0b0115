package news

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// NewSource builds the Source named by opts.Source.
func NewSource(opts Options) (Source, error) {
	switch opts.Source {
	case "newsapi", "":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("newsapi source requires an API key")
		}
		return NewNewsAPISource(opts.BaseURL, opts.APIKey, opts.Language, opts.HTTPClient), nil
	case "google":
		return NewGoogleSource("", opts.Language, opts.HTTPClient), nil
	case "alpaca":
		if opts.AlpacaKey == "" || opts.AlpacaSec == "" {
			return nil, fmt.Errorf("alpaca source requires key and secret")
		}
		return NewAlpacaSource(opts.AlpacaKey, opts.AlpacaSec, opts.AlpacaURL), nil
	default:
		return nil, fmt.Errorf("unknown news source %q", opts.Source)
	}
}

// --- NewsAPI ---

// NewsAPISource queries the newsapi.org "everything" endpoint.
type NewsAPISource struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

// NewNewsAPISource creates a NewsAPI source. An empty baseURL uses
// https://newsapi.org.
func NewNewsAPISource(baseURL, apiKey, language string, client *http.Client) *NewsAPISource {
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	return &NewsAPISource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		client:   httpClientOr(client),
	}
}

// Name returns "newsapi".
func (s *NewsAPISource) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch returns the most recent articles matching q.
func (s *NewsAPISource) Fetch(ctx context.Context, q Query, max int) ([]Headline, error) {
	params := url.Values{}
	params.Set("q", q.Text())
	if s.language != "" {
		params.Set("language", s.language)
	}
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(max))
	params.Set("apiKey", s.apiKey)

	body, status, err := get(ctx, s.client, s.baseURL+"/v2/everything?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding newsapi response (HTTP %d): %w", status, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", resp.Code, resp.Message)
	}

	out := make([]Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		out = append(out, Headline{
			Title:     title,
			URL:       a.URL,
			Published: a.PublishedAt,
			Source:    a.Source.Name,
		})
	}
	return out, nil
}

// --- Google News RSS ---

// GoogleSource searches Google News RSS. It needs no key.
type GoogleSource struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewGoogleSource creates a Google News source. An empty baseURL uses
// https://news.google.com.
func NewGoogleSource(baseURL, language string, client *http.Client) *GoogleSource {
	if baseURL == "" {
		baseURL = "https://news.google.com"
	}
	if language == "" {
		language = "en"
	}
	return &GoogleSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		client:   httpClientOr(client),
	}
}

// Name returns "google".
func (s *GoogleSource) Name() string { return "google" }

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

// Fetch returns the newest items of the RSS search for q.
func (s *GoogleSource) Fetch(ctx context.Context, q Query, max int) ([]Headline, error) {
	region := "US"
	if s.language == "ja" {
		region = "JP"
	}
	params := url.Values{}
	params.Set("q", q.Text()+" stock")
	params.Set("hl", s.language)
	params.Set("gl", region)
	params.Set("ceid", region+":"+s.language)

	body, status, err := get(ctx, s.client, s.baseURL+"/rss/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("google news: HTTP %d", status)
	}

	var rss rssResponse
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decoding rss: %w", err)
	}

	out := make([]Headline, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, _ = time.Parse(time.RFC1123, item.PubDate)
		}
		headline := item.Title
		if idx := strings.LastIndex(headline, " - "); idx > 0 {
			headline = headline[:idx]
		}
		out = append(out, Headline{
			Title:     strings.TrimSpace(headline),
			URL:       strings.TrimSpace(item.Link),
			Published: t,
			Source:    item.Source,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Published.After(out[j].Published) })
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// --- Alpaca ---

// AlpacaSource reads the Alpaca market-data news API. It searches by
// symbol, so the query's company name is not used.
type AlpacaSource struct {
	client *marketdata.Client
}

// NewAlpacaSource creates an Alpaca news source. An empty dataURL uses the
// client library's default endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL string) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaSource{client: marketdata.NewClient(opts)}
}

// Name returns "alpaca".
func (s *AlpacaSource) Name() string { return "alpaca" }

// Fetch returns the newest articles tagged with q's symbol. The Alpaca
// client has no context support, so ctx is only checked up front.
func (s *AlpacaSource) Fetch(ctx context.Context, q Query, max int) ([]Headline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.client.GetNews(marketdata.GetNewsRequest{
		Symbols:    []string{q.Symbol.String()},
		TotalLimit: max,
		Sort:       marketdata.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca news: %w", err)
	}

	out := make([]Headline, 0, len(items))
	for _, a := range items {
		out = append(out, Headline{
			Title:     a.Headline,
			URL:       a.URL,
			Published: a.CreatedAt,
			Source:    "alpaca",
		})
	}
	return out, nil
}

// --- HTTP helper ---

// get performs a GET and returns the body and status. Non-2xx statuses are
// returned to the caller, which may still decode an error payload.
func get(ctx context.Context, client *http.Client, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
