// Package main provides the command-line interface for downloading card
// images from Scryfall.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
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

// imagesConfig holds the dependencies for runImages, injectable for tests.
type imagesConfig struct {
	dataDir   string
	imagesDir string
	idList    string
	force     bool
	baseURL   string
	stdout    io.Writer
	logger    *slog.Logger
}

func run() error {
	dataDir := flag.String("data-dir", "data", "Directory containing the archived comment JSON files")
	imagesDir := flag.String("images-dir", "images", "Directory to store downloaded images")
	force := flag.Bool("force", false, "Redownload images that already exist")
	idList := flag.String("ids", "", "Comma-separated multiverse ids to download instead of scanning the data")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runImages(ctx, imagesConfig{
		dataDir:   *dataDir,
		imagesDir: *imagesDir,
		idList:    *idList,
		force:     *force,
		stdout:    os.Stdout,
		logger:    logger,
	})
}

func runImages(ctx context.Context, config imagesConfig) error {
	var ids map[int]struct{}
	if config.idList != "" {
		parsed, err := parseIDList(config.idList)
		if err != nil {
			return err
		}
		ids = parsed
	} else {
		if _, err := os.Stat(config.dataDir); os.IsNotExist(err) {
			return fmt.Errorf("data directory does not exist: %s", config.dataDir)
		} else if err != nil {
			return fmt.Errorf("failed to access data directory: %w", err)
		}
		config.logger.Info("scanning data files for multiverse ids", "dir", config.dataDir)
		ids = archive.NewReader(config.dataDir, archive.WithReaderLogger(config.logger)).MultiverseIDs()
	}
	config.logger.Info("selected multiverse ids", "count", len(ids))

	client := scryfall.NewClient(scryfall.ClientConfig{
		Logger:  config.logger,
		BaseURL: config.baseURL,
	})
	fetcher, err := scryfall.NewImageFetcher(scryfall.ImageFetcherConfig{
		Client:    client,
		Logger:    config.logger,
		ImagesDir: config.imagesDir,
		Force:     config.force,
	})
	if err != nil {
		return fmt.Errorf("failed to create image fetcher: %w", err)
	}

	result, err := fetcher.FetchMissing(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch images: %w", err)
	}

	fmt.Fprintf(config.stdout, "Downloaded: %d\n", result.Successful)
	fmt.Fprintf(config.stdout, "Failed: %d\n", result.Failed)
	fmt.Fprintf(config.stdout, "Images directory: %s\n", config.imagesDir)
	return nil
}

// parseIDList parses a comma-separated multiverse id list.
func parseIDList(list string) (map[int]struct{}, error) {
	ids := make(map[int]struct{})
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid multiverse id %q", part)
		}
		ids[id] = struct{}{}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no multiverse ids in %q", list)
	}
	return ids, nil
}

// newLogger builds the process logger; verbose raises the level to debug.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
