package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snabb/sitemap"

	"github.com/mtgli/gatherer-archive/internal/archive"
)

// Sitemap priorities. The index outranks individual card pages.
const (
	indexPriority = 1.0
	cardPriority  = 0.8
)

// generateSitemap writes sitemap.xml listing the index page and every card
// page in ascending multiverse-id order. Locations are fully qualified when
// a base URL is configured, otherwise relative.
func (g *Generator) generateSitemap(registry *archive.Registry) (err error) {
	sm := sitemap.New()
	sm.Add(&sitemap.URL{Loc: g.pageURL("index.html"), Priority: indexPriority})
	for _, card := range registry.CardsByID() {
		sm.Add(&sitemap.URL{
			Loc:      g.pageURL(fmt.Sprintf("cards/%d.html", card.MultiverseID)),
			Priority: cardPriority,
		})
	}

	filePath := filepath.Join(g.outputDir, "sitemap.xml")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create sitemap: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close sitemap: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(filePath)
		}
	}()

	if _, err := sm.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	g.logger.Info("generated sitemap", "path", filePath, "urls", registry.Len()+1)

	return nil
}

// pageURL builds a sitemap location, absolute when a base URL is set.
func (g *Generator) pageURL(relPath string) string {
	if g.baseURL == "" {
		return relPath
	}
	return g.baseURL + "/" + relPath
}
