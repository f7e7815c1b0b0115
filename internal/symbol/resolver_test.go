package symbol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kabu/internal/domain"
)

// fakeSearch records every free-text lookup.
type fakeSearch struct {
	calls   []string
	results map[string]domain.Symbol
	err     error
}

func (f *fakeSearch) ResolveByName(_ context.Context, text string) (domain.Symbol, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return "", f.err
	}
	if sym, ok := f.results[text]; ok {
		return sym, nil
	}
	return "", fmt.Errorf("no match: %w", domain.ErrInvalidInput)
}

func TestResolveTokyoCodeNeverSearches(t *testing.T) {
	search := &fakeSearch{}
	r := NewResolver(search)

	for _, in := range []string{"7203", "9984", "0001", " 6758 ", "７２０３"} {
		sym, err := r.Resolve(context.Background(), in)
		require.NoError(t, err, in)
		assert.Equal(t, domain.Symbol(Normalize(in)+".T"), sym, in)
	}
	assert.Empty(t, search.calls)
}

func TestResolveTickerNeverSearches(t *testing.T) {
	search := &fakeSearch{}
	r := NewResolver(search)

	cases := map[string]domain.Symbol{
		"aapl":  "AAPL",
		"AAPL":  "AAPL",
		"Tsla":  "TSLA",
		" nvda": "NVDA",
		"ＡＡＰＬ":  "AAPL",
	}
	for in, want := range cases {
		sym, err := r.Resolve(context.Background(), in)
		require.NoError(t, err, in)
		assert.Equal(t, want, sym, in)
	}
	assert.Empty(t, search.calls)
}

func TestResolveFreeTextUsesSearch(t *testing.T) {
	search := &fakeSearch{results: map[string]domain.Symbol{"ソフトバンク": "9984.t"}}
	r := NewResolver(search)

	sym, err := r.Resolve(context.Background(), "ソフトバンク")
	require.NoError(t, err)
	assert.Equal(t, domain.Symbol("9984.T"), sym)
	assert.Equal(t, []string{"ソフトバンク"}, search.calls)

	// Digits of the wrong length are not Tokyo codes.
	_, err = r.Resolve(context.Background(), "72030")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"ソフトバンク", "72030"}, search.calls)
}

func TestResolveFailuresStayDistinguishable(t *testing.T) {
	r := NewResolver(&fakeSearch{})
	_, err := r.Resolve(context.Background(), "no such co")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, errors.Is(err, domain.ErrProvider))

	down := NewResolver(&fakeSearch{err: fmt.Errorf("dial tcp: %w", domain.ErrProvider)})
	_, err = down.Resolve(context.Background(), "toyota motor")
	require.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestResolveEmpty(t *testing.T) {
	search := &fakeSearch{}
	_, err := NewResolver(search).Resolve(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, search.calls)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsTokyoCode("1234"))
	assert.False(t, IsTokyoCode("123"))
	assert.False(t, IsTokyoCode("12a4"))
	assert.True(t, IsTicker("BRK"))
	assert.False(t, IsTicker("BRK.B"))
	assert.False(t, IsTicker(""))
}
