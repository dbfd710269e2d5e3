package scryfall

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CardMapStore reads and writes the card name map cache file, a JSON object
// mapping lowercased card names to multiverse ids.
type CardMapStore struct {
	path string
}

// NewCardMapStore creates a store for the given cache file path.
func NewCardMapStore(path string) *CardMapStore {
	return &CardMapStore{path: path}
}

// Path returns the cache file path.
func (s *CardMapStore) Path() string {
	return s.path
}

// Load reads the name map. A missing file loads as an empty map so link
// rewriting degrades gracefully instead of failing.
func (s *CardMapStore) Load() (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read card name map: %w", err)
	}

	var nameMap map[string]int
	if err := json.Unmarshal(data, &nameMap); err != nil {
		return nil, fmt.Errorf("failed to parse card name map %s: %w", s.path, err)
	}

	return nameMap, nil
}

// Save writes the name map to disk, creating the cache directory when
// needed.
func (s *CardMapStore) Save(nameMap map[string]int) error {
	data, err := json.MarshalIndent(nameMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal card name map: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write card name map: %w", err)
	}

	return nil
}
