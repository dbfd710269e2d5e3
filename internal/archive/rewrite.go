package archive

import (
	"fmt"
	"regexp"
	"strings"
)

// cardLinkPattern matches the card anchors Gatherer embedded in comment
// bodies: a Details.aspx href carrying the URL-encoded card name, the
// autoCard class, and a data:cardname attribute around the visible text.
var cardLinkPattern = regexp.MustCompile(`<a href="/Pages/Card/Details\.aspx\?name=([^"]+)" class="autoCard" data:cardname="[^"]*">([^<]+)</a>`)

// LinkRewriter rewrites archived card anchors into relative links to local
// card pages.
type LinkRewriter struct {
	nameToID map[string]int
}

// NewLinkRewriter creates a LinkRewriter that resolves card names through
// the given lowercased name to multiverse-id map.
func NewLinkRewriter(nameToID map[string]int) *LinkRewriter {
	return &LinkRewriter{nameToID: nameToID}
}

// Rewrite replaces every archived card anchor in text. Names that resolve
// become relative links to the target card page; names that do not degrade
// to the bare link text. Everything else passes through unchanged.
func (rw *LinkRewriter) Rewrite(text string) string {
	return cardLinkPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := cardLinkPattern.FindStringSubmatch(match)
		name := strings.ReplaceAll(sub[1], "%20", " ")
		linkText := sub[2]

		id, ok := rw.nameToID[strings.ToLower(name)]
		if !ok {
			return linkText
		}
		return fmt.Sprintf(`<a href="../cards/%d.html" class="card-link">%s</a>`, id, linkText)
	})
}
