// Package testfixtures provides shared fixtures for exercising the archive
// pipeline end to end: a small deterministic comment archive, matching
// Scryfall metadata, and a mock Scryfall API server.
package testfixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mtgli/gatherer-archive/internal/archive"
	"github.com/mtgli/gatherer-archive/internal/scryfall"
	"github.com/mtgli/gatherer-archive/internal/site"
)

// Multiverse ids of the sample archive cards.
const (
	ArenaID         = 97042
	LightningBoltID = 209
	BlackLotusID    = 3
)

// ArchiveFiles returns the sample comment archive, filename to JSON
// document. Arena carries a cross-card link to Lightning Bolt, Lightning
// Bolt has three voted comments, Black Lotus has a single unvoted one.
func ArchiveFiles() map[string]string {
	return map[string]string{
		"arena.json": `{
  "97042: Arena": [
    {
      "author": "TestUser",
      "author_id": 1001,
      "datetime": "2010-03-14 09:26:12",
      "id": 70172,
      "text_parsed": "Works well with <a href=\"/Pages/Card/Details.aspx?name=Lightning%20Bolt\" class=\"autoCard\" data:cardname=\"lightning bolt\">Lightning Bolt</a>.",
      "text_posted": "Works well with Lightning Bolt.",
      "timestamp": "1268558772",
      "vote_count": 8,
      "vote_sum": 68
    }
  ]
}`,
		"bolt.json": `{
  "209: Lightning Bolt": [
    {
      "author": "BoltFan",
      "author_id": 2001,
      "datetime": "2009-05-01 10:00:00",
      "id": 500,
      "text_parsed": "Best burn spell ever printed.",
      "text_posted": "Best burn spell ever printed.",
      "timestamp": "1241172000",
      "vote_count": 4,
      "vote_sum": 40
    },
    {
      "author": "OldTimer",
      "author_id": 2002,
      "datetime": "2009-06-12 11:30:00",
      "id": 501,
      "text_parsed": "Still playable everywhere.",
      "text_posted": "Still playable everywhere.",
      "timestamp": "1244806200",
      "vote_count": 2,
      "vote_sum": 16
    },
    {
      "author": "Grinder",
      "author_id": 2003,
      "datetime": "2010-01-20 08:15:00",
      "id": 502,
      "text_parsed": "Four copies, every deck.",
      "text_posted": "Four copies, every deck.",
      "timestamp": "1263975300",
      "vote_count": 1,
      "vote_sum": 6
    }
  ]
}`,
		"lotus.json": `{
  "3: Black Lotus": [
    {
      "author": "Collector",
      "author_id": 3001,
      "datetime": "2008-11-20 22:45:00",
      "id": 900,
      "text_parsed": "Seen one in person exactly once.",
      "text_posted": "Seen one in person exactly once.",
      "timestamp": "1227221100",
      "vote_count": 0,
      "vote_sum": 0
    }
  ]
}`,
	}
}

// SampleMetadata returns enrichment records for every sample card.
func SampleMetadata() map[int]*scryfall.CardMetadata {
	return map[int]*scryfall.CardMetadata{
		ArenaID: {
			MultiverseID:    ArenaID,
			Name:            "Arena",
			SetName:         "Time Spiral Timeshifted",
			SetCode:         "TSB",
			Artist:          "Rob Alexander",
			ReleasedAt:      "2006-10-06",
			ScryfallID:      "d5b4cc4f-a3a4-4071-9a63-3d28e0b76d51",
			CollectorNumber: strPtr("117"),
		},
		LightningBoltID: {
			MultiverseID:    LightningBoltID,
			Name:            "Lightning Bolt",
			SetName:         "Limited Edition Alpha",
			SetCode:         "LEA",
			Artist:          "Christopher Rush",
			ReleasedAt:      "1993-08-05",
			ScryfallID:      "4d5a0f4f-4a17-4b8b-9eea-7a0f2e1a2d10",
			CollectorNumber: strPtr("161"),
		},
		BlackLotusID: {
			MultiverseID:    BlackLotusID,
			Name:            "Black Lotus",
			SetName:         "Limited Edition Alpha",
			SetCode:         "LEA",
			Artist:          "Christopher Rush",
			ReleasedAt:      "1993-08-05",
			ScryfallID:      "b0faa7f2-b547-42c4-a810-839da50dadfe",
			CollectorNumber: strPtr("232"),
		},
	}
}

func strPtr(s string) *string {
	return &s
}

// EncodeEntry builds the JSON document for one data file holding a single
// card entry.
func EncodeEntry(multiverseID int, name string, comments []archive.Comment) ([]byte, error) {
	doc := map[string][]archive.Comment{
		fmt.Sprintf("%d: %s", multiverseID, name): comments,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// CardImagePNG encodes a card-proportioned test image.
func CardImagePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 74, 104))
	for y := 0; y < 104; y++ {
		for x := 0; x < 74; x++ {
			img.Set(x, y, color.RGBA{R: 60, G: 60, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(fmt.Sprintf("testfixtures: failed to encode card image: %v", err))
	}
	return buf.Bytes()
}

// MockScryfallHandler returns an HTTP handler that simulates the Scryfall
// API for the given metadata. Card lookups are served under
// /cards/multiverse/ with image URLs pointing back at the same server;
// unknown ids get Scryfall-shaped 404 errors.
func MockScryfallHandler(metadata map[int]*scryfall.CardMetadata, imageData []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			_, _ = w.Write(imageData)
			return
		}

		// Verify the headers Scryfall's terms ask clients to send.
		if r.Header.Get("Accept") != "application/json" || r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		idText := strings.TrimPrefix(r.URL.Path, "/cards/multiverse/")
		id, err := strconv.Atoi(idText)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		meta, ok := metadata[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object": "error", "code": "not_found", "details": "No card found with the given ID"}`))
			return
		}

		payload := map[string]any{
			"id":          meta.ScryfallID,
			"name":        meta.Name,
			"set_name":    meta.SetName,
			"set":         strings.ToLower(meta.SetCode),
			"artist":      meta.Artist,
			"released_at": meta.ReleasedAt,
			"image_uris": map[string]string{
				"png": "http://" + r.Host + "/img/" + idText + ".png",
			},
		}
		if meta.CollectorNumber != nil {
			payload["collector_number"] = *meta.CollectorNumber
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// TestingT is the subset of *testing.T the fixture helpers need, so the
// package itself never imports testing.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	TempDir() string
}

// WriteArchive writes the sample archive into a fresh directory and returns
// its path.
func WriteArchive(t TestingT) string {
	t.Helper()

	dataDir := t.TempDir()
	for name, content := range ArchiveFiles() {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write data file %s: %v", name, err)
		}
	}
	return dataDir
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ScryfallTestSetup contains the components for Scryfall domain tests.
type ScryfallTestSetup struct {
	Server        *httptest.Server
	Client        *scryfall.Client
	MetadataStore *scryfall.MetadataStore
	MetadataPath  string
	Cleanup       func()
}

// SetupScryfallTest starts a mock Scryfall server and returns a client and
// metadata store wired to it. The client's rate limit is raised so tests do
// not sleep.
func SetupScryfallTest(t TestingT, metadata map[int]*scryfall.CardMetadata) *ScryfallTestSetup {
	t.Helper()

	metadataPath := filepath.Join(t.TempDir(), "scryfall", "data.json")
	server := httptest.NewServer(MockScryfallHandler(metadata, CardImagePNG()))

	client := scryfall.NewClient(scryfall.ClientConfig{
		Logger:         quietLogger(),
		BaseURL:        server.URL,
		CallsPerSecond: 1000,
	})

	return &ScryfallTestSetup{
		Server:        server,
		Client:        client,
		MetadataStore: scryfall.NewMetadataStore(metadataPath),
		MetadataPath:  metadataPath,
		Cleanup: func() {
			server.Close()
		},
	}
}

// SiteTestSetup contains the components for site generation tests.
type SiteTestSetup struct {
	Generator    *site.Generator
	DataDir      string
	OutputDir    string
	ImagesDir    string
	MetadataPath string
	Cleanup      func()
}

// SetupSiteTest writes the sample archive and metadata cache and returns a
// generator configured over them. The images directory starts empty.
func SetupSiteTest(t TestingT) *SiteTestSetup {
	t.Helper()

	dataDir := WriteArchive(t)
	tmpDir := t.TempDir()
	outputDir := filepath.Join(tmpDir, "output")
	imagesDir := filepath.Join(tmpDir, "images")
	metadataPath := filepath.Join(tmpDir, "scryfall", "data.json")

	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		t.Fatalf("failed to create images directory: %v", err)
	}
	if err := scryfall.NewMetadataStore(metadataPath).Save(SampleMetadata()); err != nil {
		t.Fatalf("failed to write metadata cache: %v", err)
	}

	gen, err := site.NewGenerator(
		site.WithDataDir(dataDir),
		site.WithOutputDir(outputDir),
		site.WithImagesDir(imagesDir),
		site.WithMetadataPath(metadataPath),
		site.WithCardMapPath(filepath.Join(tmpDir, "scryfall", "cardmap.json")),
		site.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	return &SiteTestSetup{
		Generator:    gen,
		DataDir:      dataDir,
		OutputDir:    outputDir,
		ImagesDir:    imagesDir,
		MetadataPath: metadataPath,
		Cleanup:      func() {}, // tmpDir is cleaned up by t.TempDir()
	}
}
