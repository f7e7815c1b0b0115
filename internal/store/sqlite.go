package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ WatchlistStore = (*SQLiteWatchlist)(nil)

const watchlistSchema = `
CREATE TABLE IF NOT EXISTS watchlist (
	position INTEGER NOT NULL PRIMARY KEY,
	symbol   TEXT    NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS watchlist_meta (
	key   TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLiteWatchlist persists the watchlist in a SQLite database.
type SQLiteWatchlist struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLiteWatchlist opens (or creates) a SQLite database at dbPath and
// ensures the watchlist tables exist.
func NewSQLiteWatchlist(dbPath string) (*SQLiteWatchlist, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer; the TUI never issues concurrent statements.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(watchlistSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating watchlist schema: %w", err)
	}
	return &SQLiteWatchlist{db: db, timeout: 5 * time.Second}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteWatchlist) Close() error {
	return s.db.Close()
}

// Load returns the symbols ordered by position. found is false until the
// first Save, so an empty saved list is distinguishable from a fresh database.
func (s *SQLiteWatchlist) Load() ([]string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var saved string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM watchlist_meta WHERE key = 'saved'`).Scan(&saved)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading watchlist meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM watchlist ORDER BY position`)
	if err != nil {
		return nil, false, fmt.Errorf("querying watchlist: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, false, fmt.Errorf("scanning watchlist row: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating watchlist: %w", err)
	}
	return symbols, true, nil
}

// Save replaces every row in a single transaction.
func (s *SQLiteWatchlist) Save(symbols []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("clearing watchlist: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO watchlist (position, symbol) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, i, sym); err != nil {
			return fmt.Errorf("inserting %s: %w", sym, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO watchlist_meta (key, value) VALUES ('saved', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("writing watchlist meta: %w", err)
	}
	return tx.Commit()
}
