// Package main provides the command-line interface for generating the
// static archive site.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mtgli/gatherer-archive/internal/config"
	"github.com/mtgli/gatherer-archive/internal/site"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := flag.String("data-dir", "data", "Directory containing the archived comment JSON files")
	outputDir := flag.String("output-dir", "output", "Output directory for the generated site")
	imagesDir := flag.String("images-dir", "images", "Directory containing downloaded card images")
	baseURL := flag.String("base-url", "", "Base URL for sitemap and feed links (e.g. https://gatherer.mtg.li)")
	configPath := flag.String("config", "", "Path to an optional YAML site config file")
	aboutPath := flag.String("about", "", "Markdown file rendered onto the index page")
	noWebP := flag.Bool("no-webp", false, "Skip the .webp probe when resolving card images")
	cardID := flag.Int("card-id", 0, "Generate the page for a single multiverse id only")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	if *dataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if *outputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if info, err := os.Stat(*dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", *dataDir)
	} else if err != nil {
		return fmt.Errorf("failed to access data directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", *dataDir)
	}

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags override the config file.
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *aboutPath != "" {
		cfg.AboutFile = *aboutPath
	}

	if cfg.BaseURL != "" {
		if err := validateBaseURL(cfg.BaseURL); err != nil {
			return err
		}
	}

	opts := []site.Option{
		site.WithDataDir(*dataDir),
		site.WithOutputDir(*outputDir),
		site.WithImagesDir(*imagesDir),
		site.WithLogger(logger),
	}
	if cfg.Title != "" {
		opts = append(opts, site.WithTitle(cfg.Title))
	}
	if cfg.Description != "" {
		opts = append(opts, site.WithDescription(cfg.Description))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, site.WithBaseURL(cfg.BaseURL))
	}
	if cfg.AboutFile != "" {
		opts = append(opts, site.WithAboutPath(cfg.AboutFile))
	}
	if *noWebP {
		opts = append(opts, site.WithoutWebP())
	}

	generator, err := site.NewGenerator(opts...)
	if err != nil {
		return err
	}

	if *cardID != 0 {
		if err := generator.GenerateCard(*cardID); err != nil {
			return err
		}
		fmt.Printf("Generated page for multiverse ID %d\n", *cardID)
		fmt.Printf("View at: %s\n", filepath.Join(*outputDir, "cards", fmt.Sprintf("%d.html", *cardID)))
		return nil
	}

	if err := generator.Generate(); err != nil {
		return fmt.Errorf("failed to generate site: %w", err)
	}

	fmt.Println("Site generation completed successfully!")
	fmt.Printf("Output directory: %s\n", *outputDir)
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

// validateBaseURL checks that the base URL is an absolute http(s) URL.
func validateBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https: %s", baseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base URL must include a host: %s", baseURL)
	}
	return nil
}
