package site

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/site/templates"
)

const (
	// topListSize caps the most-commented and highest-rated lists.
	topListSize = 10

	// minRatedComments is how many rated comments a card needs before its
	// average is trusted enough for the highest-rated list.
	minRatedComments = 3
)

// otherBucket collects cards whose names start with a digit or symbol.
const otherBucket = "0-9"

// buildIndexData computes the index page statistics and listings from the
// registry.
func (g *Generator) buildIndexData(registry *archive.Registry, resolver *ImageResolver) (*templates.IndexPageData, error) {
	cards := registry.Cards()

	var totalComments, cardsWithImages int
	for _, card := range cards {
		totalComments += card.TotalComments()
		if card.ImagePath != "" || resolver.Find(card.MultiverseID) != "" {
			cardsWithImages++
		}
	}

	mostCommented := make([]*archive.Card, len(cards))
	copy(mostCommented, cards)
	sort.SliceStable(mostCommented, func(i, j int) bool {
		return mostCommented[i].TotalComments() > mostCommented[j].TotalComments()
	})
	if len(mostCommented) > topListSize {
		mostCommented = mostCommented[:topListSize]
	}

	var highestRated []*archive.Card
	for _, card := range cards {
		if card.AverageRating() > 0 && card.TotalRated() >= minRatedComments {
			highestRated = append(highestRated, card)
		}
	}
	sort.SliceStable(highestRated, func(i, j int) bool {
		return highestRated[i].AverageRating() > highestRated[j].AverageRating()
	})
	if len(highestRated) > topListSize {
		highestRated = highestRated[:topListSize]
	}

	aboutHTML, err := g.renderAbout()
	if err != nil {
		return nil, err
	}

	return &templates.IndexPageData{
		Title:           g.title,
		StylesheetPath:  "static/style.css",
		Description:     g.description,
		AboutHTML:       aboutHTML,
		CardCount:       len(cards),
		TotalComments:   totalComments,
		CardsWithImages: cardsWithImages,
		MostCommented:   mostCommented,
		HighestRated:    highestRated,
		Letters:         bucketLabels(),
		Buckets:         bucketByLetter(cards),
	}, nil
}

// renderAbout renders the configured markdown about file, or returns empty
// HTML when none is configured. A configured file that cannot be read or
// rendered is a configuration error.
func (g *Generator) renderAbout() (template.HTML, error) {
	if g.aboutPath == "" {
		return "", nil
	}

	source, err := os.ReadFile(g.aboutPath)
	if err != nil {
		return "", fmt.Errorf("failed to read about file: %w", err)
	}

	rendered, err := templates.RenderMarkdown(source)
	if err != nil {
		return "", fmt.Errorf("failed to render about file %s: %w", g.aboutPath, err)
	}

	return rendered, nil
}

// bucketLabels returns the index navigation labels: A through Z, then the
// shared digits-and-symbols bucket.
func bucketLabels() []string {
	labels := make([]string, 0, 27)
	for ch := 'A'; ch <= 'Z'; ch++ {
		labels = append(labels, string(ch))
	}
	return append(labels, otherBucket)
}

// bucketByLetter groups cards by the uppercased first character of their
// name, each bucket sorted by lowercased name. Only non-empty buckets are
// returned, in navigation order.
func bucketByLetter(cards []*archive.Card) []templates.LetterBucket {
	sorted := make([]*archive.Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	grouped := make(map[string][]*archive.Card)
	for _, card := range sorted {
		label := bucketFor(card.Name)
		grouped[label] = append(grouped[label], card)
	}

	var buckets []templates.LetterBucket
	for _, label := range bucketLabels() {
		if group, ok := grouped[label]; ok {
			buckets = append(buckets, templates.LetterBucket{Label: label, Cards: group})
		}
	}
	return buckets
}

// bucketFor returns the index bucket for a card name. Names starting with
// anything outside A-Z, including accented letters like the Æ ligature,
// share the digits bucket.
func bucketFor(name string) string {
	if name == "" {
		return otherBucket
	}
	first := unicode.ToUpper([]rune(name)[0])
	if first >= 'A' && first <= 'Z' {
		return string(first)
	}
	return otherBucket
}
