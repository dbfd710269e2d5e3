package site

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gopherlibs/feedhub/feedhub"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/site/templates"
)

// MaxFeedItems is the maximum number of comments included in the RSS feed.
const MaxFeedItems = 20

// feedDescriptionLimit caps how much comment text a feed item carries.
const feedDescriptionLimit = 300

// commentDatetimeLayout is the datetime format of the archived comments.
const commentDatetimeLayout = "2006-01-02 15:04:05"

// FeedGenerator renders the recent-comments RSS feed.
type FeedGenerator struct {
	siteURL     string
	title       string
	description string
}

// FeedOption is a functional option for configuring FeedGenerator.
type FeedOption func(*FeedGenerator)

// WithFeedSiteURL sets the absolute site URL feed links are built from.
func WithFeedSiteURL(url string) FeedOption {
	return func(fg *FeedGenerator) {
		fg.siteURL = strings.TrimRight(url, "/")
	}
}

// WithFeedTitle sets the feed title.
func WithFeedTitle(title string) FeedOption {
	return func(fg *FeedGenerator) {
		fg.title = title
	}
}

// WithFeedDescription sets the feed description.
func WithFeedDescription(description string) FeedOption {
	return func(fg *FeedGenerator) {
		fg.description = description
	}
}

// NewFeedGenerator creates a new FeedGenerator with the given options.
func NewFeedGenerator(opts ...FeedOption) *FeedGenerator {
	fg := &FeedGenerator{
		title:       templates.DefaultSiteTitle,
		description: templates.DefaultSiteDescription,
	}
	for _, opt := range opts {
		opt(fg)
	}
	return fg
}

// feedComment pairs a comment with its card so comments from the whole
// registry can sort together.
type feedComment struct {
	card    *archive.Card
	comment archive.Comment
}

// GenerateFeed generates an RSS 2.0 feed of the most recent comments in
// the archive, newest first. Item links anchor directly on the comment.
func (fg *FeedGenerator) GenerateFeed(registry *archive.Registry) ([]byte, error) {
	now := time.Now()

	feed := &feedhub.Feed{
		Title:       fg.title,
		Link:        &feedhub.Link{Href: fg.siteURL},
		Description: fg.description,
		Created:     now,
		Updated:     now,
	}

	var all []feedComment
	for _, card := range registry.Cards() {
		for _, comment := range card.Comments {
			all = append(all, feedComment{card: card, comment: comment})
		}
	}

	// The zero-padded datetime strings sort lexicographically.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].comment.Datetime > all[j].comment.Datetime
	})

	limit := len(all)
	if limit > MaxFeedItems {
		limit = MaxFeedItems
	}

	items := make([]*feedhub.Item, 0, limit)
	for _, fc := range all[:limit] {
		items = append(items, fg.commentToFeedItem(fc))
	}
	feed.Items = items

	return fg.renderFeed(feed)
}

// commentToFeedItem converts one comment into a feed item anchored on its
// card page.
func (fg *FeedGenerator) commentToFeedItem(fc feedComment) *feedhub.Item {
	link := fmt.Sprintf("%s/cards/%d.html#comment-%d", fg.siteURL, fc.card.MultiverseID, fc.comment.ID)

	created, err := time.Parse(commentDatetimeLayout, fc.comment.Datetime)
	if err != nil {
		created = time.Time{}
	}

	return &feedhub.Item{
		Title:       fmt.Sprintf("Comment on %s", fc.card.DisplayName()),
		Link:        &feedhub.Link{Href: link},
		Description: fg.buildDescription(fc),
		Created:     created,
		Updated:     created,
		Id:          link,
	}
}

// buildDescription builds the description HTML for one comment item.
func (fg *FeedGenerator) buildDescription(fc feedComment) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<p><strong>%s</strong> on %s",
		escapeHTML(fc.comment.Author), escapeHTML(fc.card.DisplayName())))
	if fc.comment.VoteCount > 0 {
		sb.WriteString(" " + escapeHTML(fc.comment.StarDisplay()))
	}
	sb.WriteString("</p>")

	sb.WriteString("<p>")
	sb.WriteString(escapeHTML(truncateRunes(fc.comment.TextPosted, feedDescriptionLimit)))
	sb.WriteString("</p>")

	return sb.String()
}

// generateFeed writes feed.xml when a base URL is configured. Feed readers
// need absolute links, so without a base URL the feed is skipped.
func (g *Generator) generateFeed(registry *archive.Registry) error {
	if g.baseURL == "" {
		g.logger.Info("no base URL configured, skipping feed generation")
		return nil
	}

	fg := NewFeedGenerator(
		WithFeedSiteURL(g.baseURL),
		WithFeedTitle(g.title),
		WithFeedDescription(g.description),
	)

	feedData, err := fg.GenerateFeed(registry)
	if err != nil {
		return fmt.Errorf("failed to generate feed: %w", err)
	}

	feedPath := filepath.Join(g.outputDir, "feed.xml")
	if err := os.WriteFile(feedPath, feedData, filePerm); err != nil {
		return fmt.Errorf("failed to write feed file: %w", err)
	}

	g.logger.Info("generated feed", "path", feedPath)

	return nil
}

// escapeHTML escapes special HTML characters using the standard library.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// truncateRunes truncates a string to the specified number of runes.
// This is safe for multibyte characters such as the star glyphs.
// If truncation occurs, "..." is appended.
func truncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	// Leave room for "..." (3 characters)
	if maxRunes <= 3 {
		return "..."
	}
	return string(runes[:maxRunes-3]) + "..."
}

// renderFeed renders the feed to RSS 2.0 XML bytes.
func (fg *FeedGenerator) renderFeed(feed *feedhub.Feed) ([]byte, error) {
	rss, err := feed.ToRss()
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSS: %w", err)
	}
	return []byte(rss), nil
}
