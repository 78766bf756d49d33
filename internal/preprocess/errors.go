package preprocess

import "fmt"

// ImageError is the typed failure for unreadable or unsupported input
// images. It is the only error class allowed to surface from the
// preprocessing boundary; everything past a successful load degrades
// to conservative fallbacks instead of failing.
type ImageError struct {
	Path      string
	Operation string
	Err       error
}

func (e *ImageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("image %s failed for %q: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("image %s failed: %v", e.Operation, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
