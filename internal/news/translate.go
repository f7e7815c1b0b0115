package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GoogleTranslator calls the public Google Translate "gtx" endpoint, which
// needs no key and detects the source language.
type GoogleTranslator struct {
	baseURL string
	target  string
	client  *http.Client
}

// NewGoogleTranslator creates a translator into target (e.g. "ja"). An empty
// baseURL uses https://translate.googleapis.com.
func NewGoogleTranslator(baseURL, target string, client *http.Client) *GoogleTranslator {
	if baseURL == "" {
		baseURL = "https://translate.googleapis.com"
	}
	return &GoogleTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		target:  target,
		client:  httpClientOr(client),
	}
}

// Translate returns text translated into the target language.
func (t *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", t.target)
	params.Set("dt", "t")
	params.Set("q", text)

	body, status, err := get(ctx, t.client, t.baseURL+"/translate_a/single?"+params.Encode())
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("translate: HTTP %d", status)
	}
	return parseGTX(body)
}

// parseGTX extracts the translated segments from the nested-array response:
// [[["訳", "src", ...], ...], ...].
func parseGTX(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("decoding translation: %w", err)
	}
	if len(root) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	var segments [][]any
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("decoding translation segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
