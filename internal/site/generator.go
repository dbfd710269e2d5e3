// Package site provides functionality for generating the static archive
// site from the card comment data.
package site

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/scryfall"
	"github.com/mtgli/gatherer-archive/internal/site/templates"
)

//go:embed static
var staticFS embed.FS

// dirPerm is the permission mode for created directories.
const dirPerm = 0o755

// filePerm is the permission mode for created files.
const filePerm = 0o644

// pageProgressInterval is how many card pages between progress log lines.
const pageProgressInterval = 10

// ErrUnknownCard is returned by GenerateCard for ids absent from the data.
var ErrUnknownCard = errors.New("card not found in data")

// Generator builds the static site: one page per card, the index page, the
// sitemap, the feed, and the static assets.
type Generator struct {
	logger *slog.Logger
	engine *templates.Engine

	dataDir      string
	outputDir    string
	imagesDir    string
	metadataPath string
	cardMapPath  string
	aboutPath    string
	baseURL      string
	title        string
	description  string
	noWebP       bool
}

// Option is a functional option for configuring Generator.
type Option func(*Generator)

// WithDataDir sets the directory holding the archived comment JSON files.
func WithDataDir(dir string) Option {
	return func(g *Generator) {
		g.dataDir = dir
	}
}

// WithOutputDir sets the output directory for the generated site.
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		g.outputDir = dir
	}
}

// WithImagesDir sets the directory holding downloaded card images.
func WithImagesDir(dir string) Option {
	return func(g *Generator) {
		g.imagesDir = dir
	}
}

// WithMetadataPath overrides the metadata cache file location.
func WithMetadataPath(path string) Option {
	return func(g *Generator) {
		g.metadataPath = path
	}
}

// WithCardMapPath overrides the card name map file location.
func WithCardMapPath(path string) Option {
	return func(g *Generator) {
		g.cardMapPath = path
	}
}

// WithAboutPath sets a markdown file rendered onto the index page.
func WithAboutPath(path string) Option {
	return func(g *Generator) {
		g.aboutPath = path
	}
}

// WithBaseURL sets the public base URL used for sitemap and feed links.
// Trailing slashes are stripped.
func WithBaseURL(url string) Option {
	return func(g *Generator) {
		g.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTitle sets the site title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithDescription sets the site description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithoutWebP disables the .webp probe when resolving card images, for
// deployments that cannot serve the format.
func WithoutWebP() Option {
	return func(g *Generator) {
		g.noWebP = true
	}
}

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) (*Generator, error) {
	engine, err := templates.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	g := &Generator{
		logger:       slog.Default(),
		engine:       engine,
		dataDir:      "data",
		outputDir:    "output",
		imagesDir:    "images",
		metadataPath: scryfall.DefaultMetadataPath,
		cardMapPath:  scryfall.DefaultCardMapPath,
		title:        templates.DefaultSiteTitle,
		description:  templates.DefaultSiteDescription,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Generate builds the whole site. A card page that fails to render is
// logged and skipped so one bad card cannot sink the rest of the archive;
// failures in the site-wide artifacts are fatal.
func (g *Generator) Generate() error {
	registry, err := g.loadData()
	if err != nil {
		return err
	}

	if registry.Len() == 0 {
		g.logger.Info("no cards found in data directory", "dir", g.dataDir)
		return nil
	}

	if err := os.MkdirAll(g.outputDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resolver := NewImageResolver(g.imagesDir, g.noWebP)

	cards := registry.Cards()
	g.logger.Info("generating card pages", "count", len(cards))

	for i, card := range cards {
		if err := g.generateCardPage(card, resolver); err != nil {
			g.logger.Error("failed to generate card page",
				"name", card.Name,
				"multiverseId", card.MultiverseID,
				"error", err)
			continue
		}
		if (i+1)%pageProgressInterval == 0 || i+1 == len(cards) {
			g.logger.Info("generated card pages", "done", i+1, "total", len(cards))
		}
	}

	if err := g.generateIndexPage(registry, resolver); err != nil {
		return fmt.Errorf("failed to generate index page: %w", err)
	}

	if err := g.generateSitemap(registry); err != nil {
		return fmt.Errorf("failed to generate sitemap: %w", err)
	}

	if err := g.generateFeed(registry); err != nil {
		return fmt.Errorf("failed to generate feed: %w", err)
	}

	if err := g.copyStaticFiles(); err != nil {
		return fmt.Errorf("failed to copy static files: %w", err)
	}

	g.logger.Info("site generation complete",
		"output", g.outputDir,
		"cards", len(cards))

	return nil
}

// GenerateCard builds the page for a single card plus the static assets.
// The whole dataset still loads first: link rewriting and display names
// need the complete registry.
func (g *Generator) GenerateCard(multiverseID int) error {
	registry, err := g.loadData()
	if err != nil {
		return err
	}

	card, ok := registry.Card(multiverseID)
	if !ok {
		return fmt.Errorf("%w: multiverse id %d", ErrUnknownCard, multiverseID)
	}

	if err := os.MkdirAll(g.outputDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resolver := NewImageResolver(g.imagesDir, g.noWebP)
	if err := g.generateCardPage(card, resolver); err != nil {
		return fmt.Errorf("failed to generate card page: %w", err)
	}

	if err := g.copyStaticFiles(); err != nil {
		return fmt.Errorf("failed to copy static files: %w", err)
	}

	g.logger.Info("generated single card page",
		"name", card.Name,
		"path", filepath.Join(g.outputDir, "cards", fmt.Sprintf("%d.html", multiverseID)))

	return nil
}

// loadData reads the caches and the archive into an aggregated registry
// with cross-card links rewritten. Broken caches degrade to empty ones so
// the site can still build from the comment data alone.
func (g *Generator) loadData() (*archive.Registry, error) {
	if info, err := os.Stat(g.dataDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("data directory does not exist: %s", g.dataDir)
		}
		return nil, fmt.Errorf("failed to access data directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("data path is not a directory: %s", g.dataDir)
	}

	metadata, err := scryfall.NewMetadataStore(g.metadataPath).Load()
	if err != nil {
		g.logger.Error("ignoring unreadable metadata cache", "path", g.metadataPath, "error", err)
		metadata = map[int]*scryfall.CardMetadata{}
	} else if len(metadata) == 0 {
		g.logger.Info("no metadata cache found, card pages will be unenriched", "path", g.metadataPath)
	}

	cardMap, err := scryfall.NewCardMapStore(g.cardMapPath).Load()
	if err != nil {
		g.logger.Error("ignoring unreadable card name map", "path", g.cardMapPath, "error", err)
		cardMap = map[string]int{}
	}

	g.logger.Info("loading card data", "dir", g.dataDir)

	registry := archive.NewRegistry(archive.WithMetadata(metadata))
	reader := archive.NewReader(g.dataDir, archive.WithReaderLogger(g.logger))
	for entry := range reader.Entries() {
		registry.Add(entry)
	}

	g.logger.Info("loaded cards", "count", registry.Len())

	rewriter := archive.NewLinkRewriter(registry.NameMap(cardMap))
	registry.RewriteLinks(rewriter)

	return registry, nil
}

// generateCardPage renders one card page, first resolving and copying the
// card's local image when one exists. Image problems degrade to an
// imageless page.
func (g *Generator) generateCardPage(card *archive.Card, resolver *ImageResolver) error {
	if card.ImagePath == "" {
		if srcPath := resolver.Find(card.MultiverseID); srcPath != "" {
			relPath, err := g.copyCardImage(srcPath)
			if err != nil {
				g.logger.Error("failed to copy card image",
					"multiverseId", card.MultiverseID,
					"error", err)
			} else {
				card.ImagePath = relPath
			}
		} else {
			g.logger.Warn("no image found for card",
				"name", card.Name,
				"multiverseId", card.MultiverseID)
		}
	}

	cardsDir := filepath.Join(g.outputDir, "cards")
	if err := os.MkdirAll(cardsDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create cards directory: %w", err)
	}

	data := templates.CardPageData{
		Title:          fmt.Sprintf("%s - %s", card.DisplayName(), g.title),
		StylesheetPath: "../static/style.css",
		IndexPath:      "../index.html",
		SiteTitle:      g.title,
		Card:           card,
	}

	filePath := filepath.Join(cardsDir, fmt.Sprintf("%d.html", card.MultiverseID))
	return g.renderToFile(filePath, "card.html", data)
}

// generateIndexPage renders the index page with archive statistics, top
// lists, and the alphabetical card listing.
func (g *Generator) generateIndexPage(registry *archive.Registry, resolver *ImageResolver) error {
	data, err := g.buildIndexData(registry, resolver)
	if err != nil {
		return err
	}

	g.logger.Info("generating index page",
		"cards", data.CardCount,
		"comments", data.TotalComments,
		"withImages", data.CardsWithImages)

	return g.renderToFile(filepath.Join(g.outputDir, "index.html"), "index.html", data)
}

// copyCardImage copies a resolved image into the output tree and returns
// its path relative to the site root.
func (g *Generator) copyCardImage(srcPath string) (string, error) {
	imagesDir := filepath.Join(g.outputDir, "images")
	if err := os.MkdirAll(imagesDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	filename := filepath.Base(srcPath)
	if err := copyFile(srcPath, filepath.Join(imagesDir, filename)); err != nil {
		return "", err
	}

	return "images/" + filename, nil
}

// renderToFile renders a page template to a file. If rendering fails, the
// partially written file is removed so no corrupted page survives.
func (g *Generator) renderToFile(filePath, page string, data any) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(filePath)
		}
	}()

	if err := g.engine.Render(file, page, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	return nil
}

// copyStaticFiles writes the embedded static assets into the output tree.
func (g *Generator) copyStaticFiles() error {
	return fs.WalkDir(staticFS, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		destPath := filepath.Join(g.outputDir, path)
		if d.IsDir() {
			return os.MkdirAll(destPath, dirPerm)
		}

		data, err := staticFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", path, err)
		}
		if err := os.WriteFile(destPath, data, filePerm); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}

// copyFile copies a file from src to dst, preserving the source's
// permission bits. A half-written destination is removed on error.
func copyFile(src, dst string) (err error) {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		_ = sourceFile.Close()
	}()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}

	info, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	if err = destFile.Chmod(info.Mode()); err != nil {
		return fmt.Errorf("failed to set destination permissions: %w", err)
	}

	return nil
}
