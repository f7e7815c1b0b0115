// Command kabu is a terminal stock watchlist: quotes, charts and translated
// headlines for a persisted list of symbols.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"kabu/internal/app"
	"kabu/internal/config"
	"kabu/internal/symbol"
	"kabu/internal/util"
)

func main() {
	defaultPath := "config/kabu.yaml"
	if p := os.Getenv("KABU_CONFIG"); p != "" {
		defaultPath = p
	}
	cfgPath := flag.String("config", defaultPath, "path to config file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "kabu: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource the program opens so deferred closes happen
// before main exits.
func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logFile, err := util.OpenLogFile(cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	util.SetDefault(logger)
	logger.Info("kabu starting", "config", cfgPath, "backend", cfg.Storage.Backend, "news", cfg.News.Source)

	wl, closer, err := app.OpenWatchlist(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening watchlist: %w", err)
	}
	defer closer.Close()

	yahoo, err := app.NewMarket(cfg, logger)
	if err != nil {
		return fmt.Errorf("market client: %w", err)
	}
	newsClient, err := app.NewNews(cfg, logger)
	if err != nil {
		return fmt.Errorf("news client: %w", err)
	}

	ctrl := app.New(yahoo, symbol.NewResolver(yahoo), newsClient, wl, app.Options{
		DefaultPeriod: cfg.UI.DefaultPeriod,
		NewsMax:       cfg.News.MaxResults,
	}, logger)

	// The browser launcher echoes to the terminal, which the UI owns.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(
		initialModel(ctx, ctrl, cfg.UI, logger, browser.OpenURL),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error("ui stopped", "error", err)
		return err
	}
	// A failed save during the session leaves disk behind memory; retry once.
	if err := wl.Save(); err != nil {
		return err
	}
	logger.Info("kabu stopped")
	return nil
}
