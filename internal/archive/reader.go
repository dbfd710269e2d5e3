package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedKey marks a composite key without the "<id>: <name>" shape.
var ErrMalformedKey = errors.New("malformed data key")

// Entry is one composite record from a data file: every comment that file
// holds for one printing.
type Entry struct {
	MultiverseID int
	Name         string
	Comments     []Comment
}

// ParseDataKey splits a composite "<multiverseID>: <cardName>" key. The id
// is everything before the first ": " separator, so card names containing
// the separator survive intact.
func ParseDataKey(key string) (int, string, error) {
	idStr, name, ok := strings.Cut(key, ": ")
	if !ok {
		return 0, "", fmt.Errorf("%w %q: missing \": \" separator", ErrMalformedKey, key)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, "", fmt.Errorf("%w %q: non-numeric multiverse id", ErrMalformedKey, key)
	}
	return id, name, nil
}

// Reader walks a directory tree of archive JSON files and yields their
// card entries one file at a time.
type Reader struct {
	dataDir string
	logger  *slog.Logger
}

// ReaderOption is a functional option for configuring Reader.
type ReaderOption func(*Reader)

// WithReaderLogger sets the logger used for per-file diagnostics.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader rooted at dataDir.
func NewReader(dataDir string, opts ...ReaderOption) *Reader {
	r := &Reader{
		dataDir: dataDir,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entries returns a restartable iterator over every card entry under the
// data directory. Files are visited in lexical walk order and keys within
// a file in document order. A file that fails to parse contributes nothing:
// the failure is logged and the walk continues with the next file.
func (r *Reader) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		err := filepath.WalkDir(r.dataDir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
				return nil
			}

			entries, err := parseDataFile(path)
			if err != nil {
				if errors.Is(err, ErrMalformedKey) {
					r.logger.Error("abandoning data file", "path", path, "error", err)
				} else {
					r.logger.Warn("skipping unparseable data file", "path", path, "error", err)
				}
				return nil
			}

			for _, entry := range entries {
				if !yield(entry) {
					return filepath.SkipAll
				}
			}
			return nil
		})
		if err != nil {
			r.logger.Error("data directory walk failed", "dir", r.dataDir, "error", err)
		}
	}
}

// MultiverseIDs collects every unique multiverse id mentioned in the data
// directory.
func (r *Reader) MultiverseIDs() map[int]struct{} {
	ids := make(map[int]struct{})
	for entry := range r.Entries() {
		ids[entry.MultiverseID] = struct{}{}
	}
	return ids
}

// BuildNameMap builds the lowercased card-name to multiverse-id lookup
// used for cross-card link resolution. The first id seen for a name wins,
// so reprints of the same card collapse onto one target page.
func (r *Reader) BuildNameMap() map[string]int {
	nameMap := make(map[string]int)
	for entry := range r.Entries() {
		name := strings.ToLower(entry.Name)
		if _, ok := nameMap[name]; !ok {
			nameMap[name] = entry.MultiverseID
		}
	}
	return nameMap
}

// parseDataFile decodes one archive file into entries, preserving the
// document order of its keys. The whole file parses before anything is
// returned, so a broken file contributes no partial entries.
func parseDataFile(path string) (entries []Entry, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close data file: %w", closeErr)
		}
	}()

	// json.Unmarshal into a map would lose the key order, so the file is
	// streamed token by token instead.
	dec := json.NewDecoder(file)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to decode data file: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("data file is not a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode data key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in data file", tok)
		}

		id, name, err := ParseDataKey(key)
		if err != nil {
			return nil, err
		}

		var comments []Comment
		if err := dec.Decode(&comments); err != nil {
			return nil, fmt.Errorf("failed to decode comments for %q: %w", key, err)
		}

		entries = append(entries, Entry{MultiverseID: id, Name: name, Comments: comments})
	}

	return entries, nil
}
