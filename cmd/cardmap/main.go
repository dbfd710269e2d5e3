// Package main provides the command-line interface for building the card
// name map used by cross-card link rewriting.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/scryfall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	output := flag.String("output", scryfall.DefaultCardMapPath, "Path to the card name map file")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	dataDir := flag.Arg(0)
	if dataDir == "" {
		dataDir = "data"
	}

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", dataDir)
	} else if err != nil {
		return fmt.Errorf("failed to access data directory: %w", err)
	}

	logger.Info("building card name map", "dir", dataDir)

	nameMap := archive.NewReader(dataDir, archive.WithReaderLogger(logger)).BuildNameMap()
	if err := scryfall.NewCardMapStore(*output).Save(nameMap); err != nil {
		return fmt.Errorf("failed to save card name map: %w", err)
	}

	fmt.Printf("Saved %d unique card names to %s\n", len(nameMap), *output)
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
