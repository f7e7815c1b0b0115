package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"kabu/internal/domain"
)

// Compile-time interface check.
var _ SeriesStore = (*ParquetStore)(nil)

// ParquetStore implements SeriesStore using Parquet files on disk.
type ParquetStore struct {
	DataDir string
	// Location is applied to timestamps returned by ReadSeries. Nil means UTC.
	Location *time.Location
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string, loc *time.Location) *ParquetStore {
	return &ParquetStore{DataDir: dataDir, Location: loc}
}

// PointRecord is the Parquet schema for one close of an exported series.
type PointRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
	Interval  string  `parquet:"interval"`
}

// WriteSeries writes the series to
//
//	<DataDir>/series/<SYMBOL>/<period>.parquet
//
// merging with any existing file; incoming points win on equal timestamps.
func (s *ParquetStore) WriteSeries(_ context.Context, series domain.PriceSeries) error {
	if series.Empty() {
		return nil
	}
	if series.Period == "" {
		return fmt.Errorf("series for %s has no period: %w", series.Symbol, domain.ErrInvalidInput)
	}

	records := make([]PointRecord, len(series.Points))
	for i, p := range series.Points {
		records[i] = PointRecord{
			Symbol:    series.Symbol.String(),
			Timestamp: p.Time.UnixMilli(),
			Close:     p.Close,
			Interval:  series.Interval,
		}
	}

	path := s.seriesPath(series.Symbol, series.Period)
	existing, err := readParquetFile[PointRecord](path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading existing %s: %w", path, err)
	}
	merged := mergePointRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing series for %s/%s: %w", series.Symbol, series.Period, err)
	}
	return nil
}

// ReadSeries reads a stored series. A missing file yields ErrDataUnavailable.
func (s *ParquetStore) ReadSeries(_ context.Context, symbol domain.Symbol, period string) (domain.PriceSeries, error) {
	path := s.seriesPath(symbol, period)
	records, err := readParquetFile[PointRecord](path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.PriceSeries{}, fmt.Errorf("%s/%s: %w", symbol, period, domain.ErrDataUnavailable)
		}
		return domain.PriceSeries{}, fmt.Errorf("reading %s: %w", path, err)
	}

	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	out := domain.PriceSeries{Symbol: symbol, Period: period, Points: make([]domain.Point, 0, len(records))}
	for _, r := range records {
		if out.Interval == "" {
			out.Interval = r.Interval
		}
		out.Points = append(out.Points, domain.Point{
			Time:  time.UnixMilli(r.Timestamp).In(loc),
			Close: r.Close,
		})
	}
	return out, nil
}

// ListSymbols lists all symbols that have series data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "series")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// seriesPath returns the filesystem path for a series Parquet file.
// Layout: <dataDir>/series/<SYMBOL>/<period>.parquet
func (s *ParquetStore) seriesPath(symbol domain.Symbol, period string) string {
	return filepath.Join(s.DataDir, "series", strings.ToUpper(symbol.String()), strings.ToLower(period)+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[T](path)
}

// mergePointRecords deduplicates records by timestamp, preferring incoming
// records over existing ones. Results are sorted by timestamp.
func mergePointRecords(existing, incoming []PointRecord) []PointRecord {
	seen := make(map[int64]PointRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]PointRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
