package scryfall

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"  // registered for decoding downloaded images
	_ "image/jpeg" // registered for decoding downloaded images
)

// Card images are scaled to fit this bounding box so the generated site
// stays compact while the cards remain readable.
const (
	targetImageWidth  = 330
	targetImageHeight = 459
)

// imageProgressInterval is how many downloads between progress log lines.
const imageProgressInterval = 25

// ImageFetcherConfig holds configuration for ImageFetcher.
type ImageFetcherConfig struct {
	Client    *Client
	Logger    *slog.Logger
	ImagesDir string
	// Force refetches images that already exist on disk.
	Force bool
}

// ImageFetcher downloads card images, scales them to the target bounding
// box, and stores them as PNG files named by multiverse id.
type ImageFetcher struct {
	client    *Client
	logger    *slog.Logger
	imagesDir string
	force     bool
}

// NewImageFetcher creates an ImageFetcher from the given configuration.
func NewImageFetcher(config ImageFetcherConfig) (*ImageFetcher, error) {
	if config.Client == nil {
		return nil, ErrNilClient
	}
	imagesDir := config.ImagesDir
	if imagesDir == "" {
		imagesDir = "images"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ImageFetcher{
		client:    config.Client,
		logger:    logger,
		imagesDir: imagesDir,
		force:     config.Force,
	}, nil
}

// ExistingIDs scans the images directory for already-downloaded images,
// keyed by the numeric filename stem. Files not named "<id>.png" are
// ignored.
func (f *ImageFetcher) ExistingIDs() (map[int]struct{}, error) {
	matches, err := filepath.Glob(filepath.Join(f.imagesDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan images directory: %w", err)
	}

	existing := make(map[int]struct{}, len(matches))
	for _, match := range matches {
		stem := strings.TrimSuffix(filepath.Base(match), ".png")
		id, err := strconv.Atoi(stem)
		if err != nil {
			continue
		}
		existing[id] = struct{}{}
	}

	return existing, nil
}

// FetchMissing downloads and processes every id in ids without an existing
// image, in ascending id order, or every id when Force is set. A failed id
// is logged, counted, and skipped.
func (f *ImageFetcher) FetchMissing(ctx context.Context, ids map[int]struct{}) (*FetchResult, error) {
	if err := os.MkdirAll(f.imagesDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	var missing []int
	if f.force {
		for id := range ids {
			missing = append(missing, id)
		}
		f.logger.Info("force refetch requested", "count", len(missing))
	} else {
		existing, err := f.ExistingIDs()
		if err != nil {
			return nil, err
		}
		for id := range ids {
			if _, ok := existing[id]; !ok {
				missing = append(missing, id)
			}
		}
		f.logger.Info("scanned images directory",
			"dir", f.imagesDir,
			"existing", len(existing),
			"missing", len(missing))
	}
	sort.Ints(missing)

	result := &FetchResult{
		Total:  len(ids),
		Cached: len(ids) - len(missing),
	}

	if len(missing) == 0 {
		f.logger.Info("all images already downloaded")
		return result, nil
	}

	for i, id := range missing {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		if err := f.fetchOne(ctx, id); err != nil {
			f.logger.Error("failed to fetch image", "multiverseId", id, "error", err)
			result.Failed++
		} else {
			result.Successful++
		}

		if (i+1)%imageProgressInterval == 0 || i+1 == len(missing) {
			f.logger.Info("image download progress",
				"processed", i+1,
				"total", len(missing),
				"successful", result.Successful,
				"failed", result.Failed)
		}
	}

	f.logger.Info("image download complete",
		"successful", result.Successful,
		"failed", result.Failed,
		"dir", f.imagesDir)

	return result, nil
}

// fetchOne downloads, scales, and writes a single card image.
func (f *ImageFetcher) fetchOne(ctx context.Context, multiverseID int) error {
	url, err := f.client.FetchImageURL(ctx, multiverseID)
	if err != nil {
		return err
	}

	data, err := f.client.DownloadImage(ctx, url)
	if err != nil {
		return err
	}

	resized, err := ResizeImage(data)
	if err != nil {
		return err
	}

	path := filepath.Join(f.imagesDir, fmt.Sprintf("%d.png", multiverseID))
	if err := os.WriteFile(path, resized, filePerm); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	return nil
}

// ResizeImage decodes an image, scales it to fit the target bounding box
// preserving aspect ratio, and re-encodes it as PNG. PNG keeps the stored
// image lossless and preserves the transparent corners of card scans.
func ResizeImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := FitDimensions(bounds.Dx(), bounds.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// FitDimensions scales (width, height) to fit the target bounding box
// preserving aspect ratio: images wider than the target aspect scale by
// width, taller ones by height. Fractional results truncate.
func FitDimensions(width, height int) (int, int) {
	aspect := float64(width) / float64(height)
	targetAspect := float64(targetImageWidth) / float64(targetImageHeight)

	if aspect > targetAspect {
		return targetImageWidth, int(float64(targetImageWidth) / aspect)
	}
	return int(float64(targetImageHeight) * aspect), targetImageHeight
}
