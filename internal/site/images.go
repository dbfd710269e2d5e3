package site

import (
	"fmt"
	"os"
	"path/filepath"
)

// imageExtensions is the probe order for locating a downloaded card image.
// The first hit wins, so a webp next to a jpg prefers the webp.
var imageExtensions = []string{".webp", ".jpg", ".jpeg", ".png", ".gif"}

// ImageResolver locates downloaded card images by multiverse id.
type ImageResolver struct {
	imagesDir string
	skipWebP  bool
}

// NewImageResolver creates a resolver over imagesDir. With skipWebP set the
// .webp probe is dropped.
func NewImageResolver(imagesDir string, skipWebP bool) *ImageResolver {
	return &ImageResolver{imagesDir: imagesDir, skipWebP: skipWebP}
}

// Find probes the known extensions in order and returns the path of the
// first image present for the id, or the empty string when none exists.
func (r *ImageResolver) Find(multiverseID int) string {
	for _, ext := range imageExtensions {
		if r.skipWebP && ext == ".webp" {
			continue
		}
		path := filepath.Join(r.imagesDir, fmt.Sprintf("%d%s", multiverseID, ext))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
