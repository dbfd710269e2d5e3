package scryfall_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mtgli/gatherer-archive/internal/scryfall"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newMetadataServer serves Scryfall-shaped card JSON for the given ids and
// records which ids were requested. Ids not in serve get a 404.
func newMetadataServer(t *testing.T, serve map[int]string) (*httptest.Server, func() []int) {
	t.Helper()

	var (
		mu        sync.Mutex
		requested []int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idText := strings.TrimPrefix(r.URL.Path, "/cards/multiverse/")
		id, err := strconv.Atoi(idText)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		requested = append(requested, id)
		mu.Unlock()

		name, ok := serve[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object": "error", "details": "No card found"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          fmt.Sprintf("scryfall-%d", id),
			"name":        name,
			"set_name":    "Test Set",
			"set":         "tst",
			"artist":      "Test Artist",
			"released_at": "2001-01-01",
		})
	}))
	t.Cleanup(server.Close)

	return server, func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), requested...)
	}
}

func TestNewMetadataFetcher_Validation(t *testing.T) {
	t.Parallel()

	store := scryfall.NewMetadataStore(filepath.Join(t.TempDir(), "data.json"))
	client := newTestClient("http://localhost")

	if _, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{Store: store}); !errors.Is(err, scryfall.ErrNilClient) {
		t.Errorf("NewMetadataFetcher() without client: error = %v, want ErrNilClient", err)
	}
	if _, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{Client: client}); !errors.Is(err, scryfall.ErrNilStore) {
		t.Errorf("NewMetadataFetcher() without store: error = %v, want ErrNilStore", err)
	}
}

func TestMetadataFetcher_FetchAll(t *testing.T) {
	t.Parallel()

	server, requestedIDs := newMetadataServer(t, map[int]string{
		100: "Black Lotus",
		// 300 is known to the archive but not to the API.
	})

	storePath := filepath.Join(t.TempDir(), "scryfall", "data.json")
	store := scryfall.NewMetadataStore(storePath)

	// Pre-seed the cache with id 200 so the fetcher skips it.
	cached := map[int]*scryfall.CardMetadata{
		200: {MultiverseID: 200, Name: "Ancestral Recall", SetCode: "LEA"},
	}
	if err := store.Save(cached); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	fetcher, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{
		Client: newTestClient(server.URL),
		Store:  store,
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewMetadataFetcher() error = %v", err)
	}

	ids := map[int]struct{}{100: {}, 200: {}, 300: {}}
	result, err := fetcher.FetchAll(context.Background(), ids)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Cached != 1 {
		t.Errorf("Cached = %d, want 1", result.Cached)
	}
	if result.Successful != 1 {
		t.Errorf("Successful = %d, want 1", result.Successful)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}

	// The cached id must not hit the API; the missing ids are fetched in
	// ascending order.
	got := requestedIDs()
	if len(got) != 2 || got[0] != 100 || got[1] != 300 {
		t.Errorf("requested ids = %v, want [100 300]", got)
	}

	// Reload the cache: the fetched card joins the seeded one, the failed
	// id stays absent.
	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to reload cache: %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("reloaded cache has %d entries, want 2", len(reloaded))
	}
	if reloaded[100] == nil || reloaded[100].Name != "Black Lotus" {
		t.Errorf("cache entry 100 = %+v, want Black Lotus", reloaded[100])
	}
	if reloaded[200] == nil || reloaded[200].Name != "Ancestral Recall" {
		t.Errorf("cache entry 200 = %+v, want Ancestral Recall", reloaded[200])
	}
	if _, ok := reloaded[300]; ok {
		t.Error("failed id 300 should not be cached")
	}
}

func TestMetadataFetcher_FetchAllFullyCached(t *testing.T) {
	t.Parallel()

	server, requestedIDs := newMetadataServer(t, nil)

	store := scryfall.NewMetadataStore(filepath.Join(t.TempDir(), "data.json"))
	if err := store.Save(map[int]*scryfall.CardMetadata{
		1: {MultiverseID: 1, Name: "Ankh of Mishra"},
		2: {MultiverseID: 2, Name: "Armageddon"},
	}); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	fetcher, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{
		Client: newTestClient(server.URL),
		Store:  store,
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewMetadataFetcher() error = %v", err)
	}

	result, err := fetcher.FetchAll(context.Background(), map[int]struct{}{1: {}, 2: {}})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if result.Cached != 2 || result.Successful != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want everything cached", result)
	}
	if got := requestedIDs(); len(got) != 0 {
		t.Errorf("fully cached run made API requests: %v", got)
	}
}

func TestMetadataFetcher_FetchAllCanceledContext(t *testing.T) {
	t.Parallel()

	server, requestedIDs := newMetadataServer(t, map[int]string{10: "Bayou"})

	storePath := filepath.Join(t.TempDir(), "data.json")
	store := scryfall.NewMetadataStore(storePath)

	fetcher, err := scryfall.NewMetadataFetcher(scryfall.MetadataFetcherConfig{
		Client: newTestClient(server.URL),
		Store:  store,
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewMetadataFetcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fetcher.FetchAll(ctx, map[int]struct{}{10: {}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("FetchAll() error = %v, want context.Canceled", err)
	}

	if got := requestedIDs(); len(got) != 0 {
		t.Errorf("canceled run made API requests: %v", got)
	}

	// The cache is still written so the next run can resume.
	if _, statErr := os.Stat(storePath); statErr != nil {
		t.Errorf("cache file should exist after canceled run: %v", statErr)
	}
}
