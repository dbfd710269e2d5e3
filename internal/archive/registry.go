package archive

import (
	"sort"
	"strings"

	"github.com/mtgli/gatherer-archive/internal/scryfall"
)

// Registry aggregates entries into cards keyed by multiverse id, preserving
// the order in which ids were first seen.
type Registry struct {
	cards    map[int]*Card
	order    []int
	metadata map[int]*scryfall.CardMetadata
}

// RegistryOption is a functional option for configuring Registry.
type RegistryOption func(*Registry)

// WithMetadata supplies the metadata cache used to enrich cards as they are
// added.
func WithMetadata(metadata map[int]*scryfall.CardMetadata) RegistryOption {
	return func(reg *Registry) {
		reg.metadata = metadata
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	reg := &Registry{
		cards: make(map[int]*Card),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// Add merges one entry into the registry. The first entry for an id creates
// the card and attaches cached metadata; later entries for the same id
// append their comments. Duplicate comment ids are kept as they are: the
// archive is preserved, not cleaned.
func (reg *Registry) Add(entry Entry) {
	if card, ok := reg.cards[entry.MultiverseID]; ok {
		card.AddComments(entry.Comments)
		return
	}

	card := NewCard(entry.MultiverseID, entry.Name, entry.Comments)
	if meta, ok := reg.metadata[entry.MultiverseID]; ok {
		card.SetName = meta.SetName
		card.SetCode = meta.SetCode
		card.Artist = meta.Artist
		card.ReleasedAt = meta.ReleasedAt
		if meta.CollectorNumber != nil {
			card.CollectorNumber = *meta.CollectorNumber
		}
	}
	reg.cards[entry.MultiverseID] = card
	reg.order = append(reg.order, entry.MultiverseID)
}

// Card returns the card for the given multiverse id.
func (reg *Registry) Card(multiverseID int) (*Card, bool) {
	card, ok := reg.cards[multiverseID]
	return card, ok
}

// Len returns the number of distinct cards.
func (reg *Registry) Len() int {
	return len(reg.cards)
}

// Cards returns all cards in first-seen order.
func (reg *Registry) Cards() []*Card {
	cards := make([]*Card, 0, len(reg.order))
	for _, id := range reg.order {
		cards = append(cards, reg.cards[id])
	}
	return cards
}

// CardsByID returns all cards sorted by ascending multiverse id.
func (reg *Registry) CardsByID() []*Card {
	cards := reg.Cards()
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].MultiverseID < cards[j].MultiverseID
	})
	return cards
}

// NameMap returns the cached name map supplemented with the name of every
// registered card, lowercased. Cached entries win over registry names, and
// among registry names the first-seen id wins, matching the policy of the
// cache builder itself.
func (reg *Registry) NameMap(cached map[string]int) map[string]int {
	nameMap := make(map[string]int, len(cached)+len(reg.order))
	for name, id := range cached {
		nameMap[name] = id
	}
	for _, id := range reg.order {
		name := strings.ToLower(reg.cards[id].Name)
		if _, ok := nameMap[name]; !ok {
			nameMap[name] = id
		}
	}
	return nameMap
}

// RewriteLinks rewrites the cross-card links in every comment body exactly
// once. It runs after aggregation so link targets can resolve against the
// full card set.
func (reg *Registry) RewriteLinks(rw *LinkRewriter) {
	for _, id := range reg.order {
		card := reg.cards[id]
		for i := range card.Comments {
			card.Comments[i].TextParsed = rw.Rewrite(card.Comments[i].TextParsed)
		}
	}
}
