// Package archive provides the card and comment models for the archived
// Gatherer comment data and the readers that load them from disk.
package archive

import (
	"fmt"
	"strings"
)

// Comment is a single user comment on a card, as stored in the archive
// files. All fields are present in the source data; TextParsed carries the
// comment body as rendered HTML, TextPosted the raw text as submitted.
type Comment struct {
	Author     string `json:"author"`
	AuthorID   int64  `json:"author_id"`
	Datetime   string `json:"datetime"`
	ID         int64  `json:"id"`
	TextParsed string `json:"text_parsed"`
	TextPosted string `json:"text_posted"`
	Timestamp  string `json:"timestamp"`
	VoteCount  int    `json:"vote_count"`
	VoteSum    int    `json:"vote_sum"`
}

// StarRating returns the comment's rating on a five-star scale. Vote sums
// are stored doubled, so the rating is vote_sum / (2 * vote_count). A
// comment without votes rates zero.
func (c Comment) StarRating() float64 {
	if c.VoteCount == 0 {
		return 0
	}
	return float64(c.VoteSum) / float64(2*c.VoteCount)
}

// StarDisplay renders the rating as five star glyphs followed by the
// numeric value, e.g. "★★★☆☆ (3.5/5.0)". Whole stars round down and a
// fractional part of 0.5 or more shows as one additional hollow star.
func (c Comment) StarDisplay() string {
	rating := c.StarRating()

	fullStars := int(rating)
	halfStar := rating-float64(fullStars) >= 0.5
	emptyStars := 5 - fullStars
	if halfStar {
		emptyStars--
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("★", fullStars))
	if halfStar {
		b.WriteString("☆")
	}
	b.WriteString(strings.Repeat("☆", emptyStars))

	return fmt.Sprintf("%s (%.1f/5.0)", b.String(), rating)
}
