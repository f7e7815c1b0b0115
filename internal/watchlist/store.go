// Package watchlist provides the user's ordered set of tracked symbols,
// persisted through a pluggable Backend after every mutation.
package watchlist

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"kabu/internal/domain"
)

var (
	// ErrDuplicate is returned by Add when the symbol is already tracked.
	ErrDuplicate = errors.New("symbol already in watchlist")
	// ErrNotFound is returned by Remove when the symbol is not tracked.
	ErrNotFound = errors.New("symbol not in watchlist")
)

// Backend persists the ordered symbol list.
type Backend interface {
	// Load returns the persisted list. found is false when nothing has been
	// persisted yet, which is not an error.
	Load() (symbols []string, found bool, err error)
	// Save atomically replaces the persisted list.
	Save(symbols []string) error
}

// Store holds the watchlist in memory and writes it through to a Backend.
type Store struct {
	mu       sync.RWMutex
	symbols  []domain.Symbol
	backend  Backend
	defaults []string
	log      *slog.Logger
}

// NewStore creates a Store and loads persisted state from backend, falling
// back to defaults when nothing has been persisted.
func NewStore(backend Backend, defaults []string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		backend:  backend,
		defaults: defaults,
		log:      log.With("component", "watchlist"),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the persisted one, or with the
// defaults when the backend has nothing.
func (s *Store) Load() error {
	raw, found, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("loading watchlist: %w", err)
	}
	if !found {
		raw = s.defaults
		s.log.Info("no persisted watchlist, using defaults", "symbols", len(raw))
	} else {
		s.log.Info("loaded watchlist", "symbols", len(raw))
	}

	s.mu.Lock()
	s.symbols = normalize(raw)
	s.mu.Unlock()
	return nil
}

// Symbols returns a copy of the list in insertion order.
func (s *Store) Symbols() []domain.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Symbol, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Len returns the number of tracked symbols.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symbols)
}

// Contains reports whether sym is tracked.
func (s *Store) Contains(sym domain.Symbol) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(domain.NormalizeSymbol(sym.String())) >= 0
}

// IndexOf returns the position of sym, or -1.
func (s *Store) IndexOf(sym domain.Symbol) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(domain.NormalizeSymbol(sym.String()))
}

// Add appends sym and persists. It returns ErrDuplicate without touching
// storage when sym is already present. A save failure is returned after the
// in-memory list has changed; the next successful save reconciles them.
func (s *Store) Add(sym domain.Symbol) error {
	sym = domain.NormalizeSymbol(sym.String())
	if sym == "" {
		return fmt.Errorf("empty symbol: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(sym) >= 0 {
		return fmt.Errorf("%s: %w", sym, ErrDuplicate)
	}
	s.symbols = append(s.symbols, sym)
	s.log.Info("symbol added", "symbol", sym)
	return s.flush()
}

// Remove deletes sym and persists.
func (s *Store) Remove(sym domain.Symbol) error {
	sym = domain.NormalizeSymbol(sym.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(sym)
	if i < 0 {
		return fmt.Errorf("%s: %w", sym, ErrNotFound)
	}
	s.symbols = append(s.symbols[:i], s.symbols[i+1:]...)
	s.log.Info("symbol removed", "symbol", sym)
	return s.flush()
}

// Save persists the current list. Callers use it to reconcile disk with
// memory after a mutation whose flush failed.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush writes the in-memory state to the backend. Must be called with mu held.
func (s *Store) flush() error {
	raw := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		raw[i] = sym.String()
	}
	if err := s.backend.Save(raw); err != nil {
		s.log.Error("saving watchlist", "error", err)
		return fmt.Errorf("saving watchlist: %w", err)
	}
	return nil
}

// indexOf must be called with mu held (read or write).
func (s *Store) indexOf(sym domain.Symbol) int {
	for i, have := range s.symbols {
		if have == sym {
			return i
		}
	}
	return -1
}

// normalize upper-cases, drops blanks and removes duplicates, keeping the
// first occurrence.
func normalize(raw []string) []domain.Symbol {
	seen := make(map[domain.Symbol]bool, len(raw))
	out := make([]domain.Symbol, 0, len(raw))
	for _, r := range raw {
		sym := domain.NormalizeSymbol(r)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
