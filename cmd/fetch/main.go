// Package main provides the command-line interface for fetching card
// metadata from Scryfall into the local cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/scryfall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// fetchConfig holds the dependencies for runFetch, injectable for tests.
type fetchConfig struct {
	dataDir    string
	outputPath string
	baseURL    string
	stdout     io.Writer
	logger     *slog.Logger
}

func run() error {
	output := flag.String("output", scryfall.DefaultMetadataPath, "Path to the metadata cache file")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	dataDir := flag.Arg(0)
	if dataDir == "" {
		dataDir = "data"
	}

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	// A long fetch is routinely interrupted; the context lets the fetcher
	// save its progress before the process exits.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runFetch(ctx, fetchConfig{
		dataDir:    dataDir,
		outputPath: *output,
		stdout:     os.Stdout,
		logger:     logger,
	})
}

func runFetch(ctx context.Context, config fetchConfig) error {
	if _, err := os.Stat(config.dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", config.dataDir)
	} else if err != nil {
		return fmt.Errorf("failed to access data directory: %w", err)
	}

	config.logger.Info("scanning data files for multiverse ids", "dir", config.dataDir)
	ids := archive.NewReader(config.dataDir, archive.WithReaderLogger(config.logger)).MultiverseIDs()
	config.logger.Info("found unique multiverse ids", "count", len(ids))

	client := scryfall.NewClient(scryfall.ClientConfig{
		Logger:  config.logger,
		BaseURL: config.baseURL,
	})
	fetcher, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{
		Client: client,
		Store:  scryfall.NewMetadataStore(config.outputPath),
		Logger: config.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata fetcher: %w", err)
	}

	result, err := fetcher.FetchAll(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}

	fmt.Fprintf(config.stdout, "Total cards: %d\n", result.Total)
	fmt.Fprintf(config.stdout, "Already cached: %d\n", result.Cached)
	fmt.Fprintf(config.stdout, "Fetched: %d\n", result.Successful)
	fmt.Fprintf(config.stdout, "Failed: %d\n", result.Failed)
	fmt.Fprintf(config.stdout, "Cache file: %s\n", config.outputPath)
	return nil
}

// newLogger builds the process logger; verbose raises the level to debug.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
