// Package templates provides the embedded HTML templates for the generated
// site and the data structures the pages render from.
package templates

import (
	"html/template"

	"github.com/mtgli/gatherer-archive/internal/archive"
)

// DefaultSiteTitle is the site title used when no configuration overrides
// it.
const DefaultSiteTitle = "Gatherer Comments Archive"

// DefaultSiteDescription describes the archive on the index page and in the
// feed.
const DefaultSiteDescription = "An archive of user comments from the retired Gatherer card database."

// CardPageData binds one card to the card page template.
type CardPageData struct {
	Title          string
	StylesheetPath string
	IndexPath      string
	SiteTitle      string
	Card           *archive.Card
}

// LetterBucket is one alphabetical group on the index page.
type LetterBucket struct {
	Label string
	Cards []*archive.Card
}

// IndexPageData binds the archive statistics and card listing to the index
// page template.
type IndexPageData struct {
	Title          string
	StylesheetPath string
	Description    string

	// AboutHTML is the rendered about text, empty when none is configured.
	AboutHTML template.HTML

	CardCount       int
	TotalComments   int
	CardsWithImages int

	MostCommented []*archive.Card
	HighestRated  []*archive.Card

	// Letters is the full navigation row; Buckets holds only the
	// non-empty groups.
	Letters []string
	Buckets []LetterBucket
}
