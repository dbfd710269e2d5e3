package archive

import (
	"fmt"
	"sort"
	"strings"
)

// Card is one distinct printing, keyed by its multiverse id. Several
// archive files may contribute comments to the same printing.
type Card struct {
	MultiverseID int
	Name         string
	Comments     []Comment

	// ImagePath is the card's image path relative to the site root, set
	// during page generation when a local image resolves. Empty when the
	// card has no image.
	ImagePath string

	// Metadata enrichment. These stay empty unless the metadata cache
	// holds a record for the multiverse id.
	SetName         string
	SetCode         string
	Artist          string
	CollectorNumber string
	ReleasedAt      string
}

// NewCard creates a Card with its comments sorted oldest first.
func NewCard(multiverseID int, name string, comments []Comment) *Card {
	c := &Card{
		MultiverseID: multiverseID,
		Name:         name,
		Comments:     comments,
	}
	c.sortComments()
	return c
}

// AddComments appends comments and restores datetime order.
func (c *Card) AddComments(comments []Comment) {
	c.Comments = append(c.Comments, comments...)
	c.sortComments()
}

// sortComments orders comments ascending by datetime. The archived
// datetime strings are zero-padded "YYYY-MM-DD HH:MM:SS", so they sort
// lexicographically. The sort is stable so equal datetimes keep their
// arrival order.
func (c *Card) sortComments() {
	sort.SliceStable(c.Comments, func(i, j int) bool {
		return c.Comments[i].Datetime < c.Comments[j].Datetime
	})
}

// DisplayName returns the card name with whatever set information is
// available to tell printings of the same card apart. Enriched cards show
// set code and collector number; cards without metadata fall back to the
// multiverse id.
func (c *Card) DisplayName() string {
	var parts []string
	if c.SetCode != "" {
		parts = append(parts, fmt.Sprintf("(%s)", c.SetCode))
	}
	if c.CollectorNumber != "" {
		parts = append(parts, fmt.Sprintf("#%s", c.CollectorNumber))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s (ID: %d)", c.Name, c.MultiverseID)
	}
	return fmt.Sprintf("%s — %s", c.Name, strings.Join(parts, " | "))
}

// TotalComments returns the number of comments on the card.
func (c *Card) TotalComments() int {
	return len(c.Comments)
}

// TotalRated returns the number of comments that carry votes.
func (c *Card) TotalRated() int {
	var rated int
	for _, comment := range c.Comments {
		if comment.VoteCount > 0 {
			rated++
		}
	}
	return rated
}

// AverageRating returns the mean star rating over the card's rated
// comments, or zero when none of them carry votes.
func (c *Card) AverageRating() float64 {
	var sum float64
	var rated int
	for _, comment := range c.Comments {
		if comment.VoteCount > 0 {
			sum += comment.StarRating()
			rated++
		}
	}
	if rated == 0 {
		return 0
	}
	return sum / float64(rated)
}
