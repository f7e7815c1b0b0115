// Package symbol turns user-typed text into a canonical market symbol.
package symbol

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"kabu/internal/domain"
)

// NameSearcher looks up a symbol by free-text company name.
type NameSearcher interface {
	ResolveByName(ctx context.Context, text string) (domain.Symbol, error)
}

// Resolver applies the resolution policy: four digits are Tokyo codes,
// letters are tickers, anything else goes to the provider's search.
type Resolver struct {
	search NameSearcher
}

// NewResolver creates a Resolver that defers free text to search.
func NewResolver(search NameSearcher) *Resolver {
	return &Resolver{search: search}
}

// Resolve maps input to a canonical symbol. Unresolvable text yields an
// error wrapping domain.ErrInvalidInput; an unreachable provider yields one
// wrapping domain.ErrProvider.
func (r *Resolver) Resolve(ctx context.Context, input string) (domain.Symbol, error) {
	text := Normalize(input)
	if text == "" {
		return "", fmt.Errorf("empty symbol: %w", domain.ErrInvalidInput)
	}

	if IsTokyoCode(text) {
		return domain.Symbol(text + domain.JapanSuffix), nil
	}
	if IsTicker(text) {
		return domain.NormalizeSymbol(text), nil
	}

	sym, err := r.search.ResolveByName(ctx, text)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", text, err)
	}
	if sym == "" {
		return "", fmt.Errorf("resolving %q: %w", text, domain.ErrInvalidInput)
	}
	return domain.NormalizeSymbol(sym.String()), nil
}

// Normalize trims input and folds characters to their canonical width, so
// full-width IME input such as "７２０３" or "ＡＡＰＬ" becomes ASCII while
// kana stays full-width for the name search.
func Normalize(input string) string {
	return strings.TrimSpace(width.Fold.String(input))
}

// IsTokyoCode reports whether s is exactly four ASCII digits.
func IsTokyoCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsTicker reports whether s is non-empty and made only of ASCII letters.
func IsTicker(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
