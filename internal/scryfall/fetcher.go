package scryfall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// saveInterval is how many fetched records accumulate between partial cache
// saves, so an interrupted fetch resumes without refetching.
const saveInterval = 50

var (
	// ErrNilClient is returned when a Client is required but not provided.
	ErrNilClient = errors.New("Client is required")
	// ErrNilStore is returned when a MetadataStore is required but not
	// provided.
	ErrNilStore = errors.New("MetadataStore is required")
)

// FetchResult summarizes one fetch run.
type FetchResult struct {
	Total      int
	Cached     int
	Successful int
	Failed     int
}

// MetadataFetcherConfig holds configuration for MetadataFetcher.
type MetadataFetcherConfig struct {
	Client *Client
	Store  *MetadataStore
	Logger *slog.Logger
}

// MetadataFetcher drives the incremental metadata fetch: it fills the cache
// with a record for every multiverse id the archive mentions, skipping ids
// already cached.
type MetadataFetcher struct {
	client *Client
	store  *MetadataStore
	logger *slog.Logger
}

// NewMetadataFetcher creates a MetadataFetcher from the given configuration.
func NewMetadataFetcher(config MetadataFetcherConfig) (*MetadataFetcher, error) {
	if config.Client == nil {
		return nil, ErrNilClient
	}
	if config.Store == nil {
		return nil, ErrNilStore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MetadataFetcher{
		client: config.Client,
		store:  config.Store,
		logger: logger,
	}, nil
}

// FetchAll fetches metadata for every id in ids the cache does not already
// hold, in ascending id order, saving the cache every saveInterval records
// and once at the end. A failed id is logged, counted, and skipped. When
// the context is canceled the cache is saved before returning so the run
// can resume where it stopped.
func (f *MetadataFetcher) FetchAll(ctx context.Context, ids map[int]struct{}) (*FetchResult, error) {
	cache, err := f.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata cache: %w", err)
	}

	var missing []int
	for id := range ids {
		if _, ok := cache[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)

	result := &FetchResult{
		Total:  len(ids),
		Cached: len(ids) - len(missing),
	}

	f.logger.Info("fetching card metadata",
		"total", result.Total,
		"cached", result.Cached,
		"missing", len(missing))

	if len(missing) == 0 {
		return result, nil
	}

	for i, id := range missing {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err := f.store.Save(cache); err != nil {
				f.logger.Error("failed to save metadata cache on shutdown", "error", err)
			}
			return result, ctxErr
		}

		f.logger.Debug("fetching metadata",
			"multiverseId", id,
			"progress", fmt.Sprintf("%d/%d", i+1, len(missing)))

		meta, err := f.client.FetchMetadata(ctx, id)
		if err != nil {
			f.logger.Error("failed to fetch metadata", "multiverseId", id, "error", err)
			result.Failed++
			continue
		}

		cache[id] = meta
		result.Successful++

		if (i+1)%saveInterval == 0 {
			f.logger.Info("saving fetch progress",
				"processed", i+1,
				"successful", result.Successful,
				"failed", result.Failed)
			if err := f.store.Save(cache); err != nil {
				return result, fmt.Errorf("failed to save metadata cache: %w", err)
			}
		}
	}

	if err := f.store.Save(cache); err != nil {
		return result, fmt.Errorf("failed to save metadata cache: %w", err)
	}

	f.logger.Info("metadata fetch complete",
		"total", result.Total,
		"successful", result.Successful,
		"failed", result.Failed,
		"cache", f.store.Path())

	return result, nil
}
