package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/receiptworks/voucherscan/internal/preprocess"
)

// Discover resolves a mixed list of files and directories into a
// sorted list of processable image paths. Directories are walked
// recursively; unsupported files inside a directory are skipped
// silently, but naming one explicitly is an error.
func Discover(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			if !preprocess.IsSupportedImage(in) {
				return nil, fmt.Errorf("unsupported file type: %s", in)
			}
			paths = append(paths, in)
			continue
		}
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != in {
					return filepath.SkipDir
				}
				return nil
			}
			if preprocess.IsSupportedImage(p) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", in, err)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
