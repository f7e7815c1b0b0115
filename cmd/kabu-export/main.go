// One-shot tool: export the price series of every watchlist symbol to
// Parquet.
//
// For each symbol, fetches the series for the requested period and merges it
// into <data_dir>/series/<SYMBOL>/<period>.parquet, replacing points that
// share a timestamp. Symbols whose fetch fails are logged and skipped.
//
// Usage:
//
//	go build -o bin/kabu-export ./cmd/kabu-export/
//	bin/kabu-export [-period 1y] [-symbols AAPL,7203.T]
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"kabu/internal/app"
	"kabu/internal/config"
	"kabu/internal/domain"
	"kabu/internal/store"
	"kabu/internal/util"
)

func main() {
	period := flag.String("period", "1y", "period code to export (1d, 7d, 1mo, ... max)")
	only := flag.String("symbols", "", "comma-separated symbols to export instead of the watchlist")
	flag.Parse()

	if _, ok := domain.PeriodByCode(*period); !ok {
		log.Fatalf("unknown period %q", *period)
	}

	cfgPath := "config/kabu.yaml"
	if p := os.Getenv("KABU_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	util.SetDefault(logger)

	var symbols []domain.Symbol
	if *only != "" {
		for _, s := range strings.Split(*only, ",") {
			if sym := domain.NormalizeSymbol(s); sym != "" {
				symbols = append(symbols, sym)
			}
		}
	} else {
		wl, closer, err := app.OpenWatchlist(cfg, logger)
		if err != nil {
			log.Fatalf("opening watchlist: %v", err)
		}
		symbols = wl.Symbols()
		closer.Close()
	}

	yahoo, err := app.NewMarket(cfg, logger)
	if err != nil {
		log.Fatalf("market client: %v", err)
	}
	ps := store.NewParquetStore(cfg.Storage.DataDir, yahoo.Location())

	written, failed := export(context.Background(), yahoo, ps, symbols, *period, logger)

	logger.Info("export complete", "symbols", len(symbols), "written", written, "failed", failed, "dataDir", cfg.Storage.DataDir)
	if failed > 0 && written == 0 {
		os.Exit(1)
	}
}

// seriesFetcher is the part of the market client the export needs.
type seriesFetcher interface {
	Series(ctx context.Context, symbol domain.Symbol, periodCode string) (domain.PriceSeries, error)
}

// export fetches and stores the period series of every symbol. It returns
// how many symbols were written and how many failed.
func export(ctx context.Context, src seriesFetcher, dst store.SeriesStore, symbols []domain.Symbol, period string, logger *slog.Logger) (written, failed int) {
	stored, err := dst.ListSymbols(ctx)
	if err != nil {
		logger.Warn("listing stored symbols", "error", err)
	}
	logger.Info("export starting", "symbols", len(symbols), "alreadyStored", len(stored))

	for _, sym := range symbols {
		series, err := src.Series(ctx, sym, period)
		if err != nil {
			logger.Warn("fetch failed", "symbol", sym, "period", period, "error", err)
			failed++
			continue
		}
		if err := dst.WriteSeries(ctx, series); err != nil {
			logger.Error("write failed", "symbol", sym, "error", err)
			failed++
			continue
		}
		written++

		total := len(series.Points)
		if merged, err := dst.ReadSeries(ctx, sym, period); err == nil {
			total = len(merged.Points)
		}
		logger.Info("exported", "symbol", sym, "period", period,
			"points", len(series.Points), "stored", total,
			"update", slices.Contains(stored, sym.String()))
	}
	return written, failed
}
