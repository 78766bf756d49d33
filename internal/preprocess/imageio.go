package preprocess

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedExtensions lists the raster formats accepted as voucher
// scans.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// IsSupportedImage reports whether the path has a supported image
// extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Metadata captures lightweight file and pixel information about a
// loaded scan.
type Metadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// LoadImage opens and decodes a voucher scan. All failures come back
// as *ImageError so batch callers can report them per file.
func LoadImage(path string) (image.Image, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, &ImageError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, Metadata{}, &ImageError{
			Path:      path,
			Operation: "load",
			Err:       fmt.Errorf("unsupported format: %s", filepath.Ext(path)),
		}
	}

	f, err := os.Open(path) //nolint:gosec // G304: reading a user-provided scan path is the point
	if err != nil {
		return nil, Metadata{}, &ImageError{Path: path, Operation: "load", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", cerr)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, Metadata{}, &ImageError{Path: path, Operation: "load", Err: err}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, Metadata{}, &ImageError{Path: path, Operation: "decode", Err: err}
	}

	b := img.Bounds()
	return img, Metadata{
		Path:      path,
		Format:    format,
		SizeBytes: fi.Size(),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}
