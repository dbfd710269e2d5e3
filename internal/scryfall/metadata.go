// Package scryfall provides the cached card metadata model, the cache file
// stores, and a rate-limited Scryfall API client used by the fetch tools.
package scryfall

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Default cache file locations, shared by the fetch tools and the site
// generator.
const (
	DefaultMetadataPath = "scryfall/data.json"
	DefaultCardMapPath  = "scryfall/cardmap.json"
)

// dirPerm is the permission mode for created directories.
const dirPerm fs.FileMode = 0o755

// filePerm is the permission mode for written files.
const filePerm fs.FileMode = 0o644

// CardMetadata is the cached Scryfall record for one printing. The first
// block of fields is always present in fetched records. The pointer fields
// stay nil when Scryfall has no value for the card and round-trip through
// the cache file as JSON null.
type CardMetadata struct {
	MultiverseID int    `json:"multiverse_id"`
	Name         string `json:"name"`
	SetName      string `json:"set_name"`
	SetCode      string `json:"set_code"`
	Artist       string `json:"artist"`
	ReleasedAt   string `json:"released_at"`
	ScryfallID   string `json:"scryfall_id"`

	ManaCost        *string           `json:"mana_cost"`
	TypeLine        *string           `json:"type_line"`
	Rarity          *string           `json:"rarity"`
	CollectorNumber *string           `json:"collector_number"`
	CMC             *float64          `json:"cmc"`
	ImageURIs       map[string]string `json:"image_uris"`
}

// MetadataStore reads and writes the metadata cache file, a JSON object
// keyed by stringified multiverse id.
type MetadataStore struct {
	path string
}

// NewMetadataStore creates a store for the given cache file path.
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

// Path returns the cache file path.
func (s *MetadataStore) Path() string {
	return s.path
}

// Load reads the cache into an id-keyed map. A missing file is not an
// error: it loads as an empty cache so first runs and cache-less site
// generation behave alike.
func (s *MetadataStore) Load() (map[int]*CardMetadata, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[int]*CardMetadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata cache: %w", err)
	}

	var raw map[string]*CardMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse metadata cache %s: %w", s.path, err)
	}

	cache := make(map[int]*CardMetadata, len(raw))
	for key, meta := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("metadata cache %s has non-numeric key %q", s.path, key)
		}
		cache[id] = meta
	}

	return cache, nil
}

// Save writes the cache back to disk, creating the cache directory when
// needed. The output is indented so cache diffs stay reviewable.
func (s *MetadataStore) Save(cache map[int]*CardMetadata) error {
	raw := make(map[string]*CardMetadata, len(cache))
	for id, meta := range cache {
		raw[strconv.Itoa(id)] = meta
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write metadata cache: %w", err)
	}

	return nil
}
