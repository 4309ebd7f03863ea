package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hoteldesk/cmd"
	"hoteldesk/internal/api"
	"hoteldesk/internal/live"
	"hoteldesk/internal/logging"
	"hoteldesk/internal/store"
	"hoteldesk/internal/ui"

	"go.uber.org/zap"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cmd.ErrVersionRequested) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		return err
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	// Open database
	database, err := store.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	client := api.NewClient(config.Backend.BaseURL, config.Backend.Timeout, logger)

	var liveURL string
	if config.Live.Enabled {
		liveURL, err = live.EventsURL(config.Backend.BaseURL, api.PathEvents)
		if err != nil {
			return fmt.Errorf("failed to build live feed url: %w", err)
		}
	}

	logger.Info("starting hoteldesk",
		zap.String("version", version),
		zap.String("backend", client.BaseURL()),
		zap.Bool("live", config.Live.Enabled),
		zap.String("db", config.DBPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and run Bubble Tea app
	return ui.Run(ctx, ui.Options{
		Backend:        client,
		DB:             database,
		Logger:         logger,
		Refresh:        config.RefreshIntervals(),
		SearchDebounce: config.SearchDebounce,
		ExportDir:      config.ExportDir,
		LiveURL:        liveURL,
		Live:           config.Live,
	})
}
