package fs

import (
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/linkmigrator"
)

// Ensure ImageLinker implements linkmigrator.EmbeddedImageLinker at compile time.
var _ linkmigrator.EmbeddedImageLinker = (*ImageLinker)(nil)

// DefaultImageFolder is the course files folder embedded images are placed in.
const DefaultImageFolder = "embedded_images"

var imageExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/svg+xml": "svg",
	"image/webp":    "webp",
	"image/bmp":     "bmp",
}

// ImageLinker writes decoded data URI images to disk. The returned links are
// relative course file paths, left for the resolver to look up once the
// files are imported.
type ImageLinker struct {
	dir string

	// Folder is the directory below dir, and the course files folder,
	// images are written to.
	Folder string
}

// NewImageLinker creates an ImageLinker writing below dir.
func NewImageLinker(dir string) *ImageLinker {
	return &ImageLinker{dir: dir, Folder: DefaultImageFolder}
}

// LinkEmbeddedImage writes img to <dir>/<folder>/<digest>.<ext>. Equal
// images share a file.
func (l *ImageLinker) LinkEmbeddedImage(img *linkmigrator.EmbeddedImage) (string, bool, error) {
	name := fmt.Sprintf("%016x.%s", xxhash.Sum64(img.Data), extension(img.MimeType))

	fullDir := filepath.Join(l.dir, l.Folder)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(fullDir, name), img.Data, 0644); err != nil {
		return "", false, fmt.Errorf("failed to write embedded image: %w", err)
	}
	return path.Join(l.Folder, name), false, nil
}

func extension(mimeType string) string {
	if ext, ok := imageExtensions[strings.ToLower(mimeType)]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
