// Package pdfinput turns scanned voucher PDFs into images the
// pipeline can process. Each embedded page image is extracted with
// pdfcpu; vouchers arrive one per page, so pages are returned in
// order and multi-image pages keep their within-page order.
package pdfinput

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageImage is one extracted image together with its 1-based page.
type PageImage struct {
	Page  int
	Image image.Image
}

// IsPDF reports whether the path names a PDF by extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ExtractPages pulls the embedded page images out of a voucher PDF.
// pageRange follows the usual "1-5" / "1,3,5" conventions; empty
// means all pages. Extraction goes through a temp directory because
// pdfcpu's image extraction is file based.
func ExtractPages(path, pageRange string) ([]PageImage, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "voucherscan-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	if len(pages) > 0 {
		pageStrings = make([]string, len(pages))
		for i, p := range pages {
			pageStrings[i] = strconv.Itoa(p)
		}
	}

	if err := api.ExtractImagesFile(path, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from %s: %w", path, err)
	}

	out, err := collectPageImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no page images found in %s", path)
	}
	return out, nil
}

// PageCount returns the number of pages in the PDF.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// collectPageImages loads every extracted image and orders the
// result by page. pdfcpu names files page_<num>_image_<idx>.<ext>.
func collectPageImages(dir string) ([]PageImage, error) {
	var out []PageImage

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		page, perr := pageFromFilename(info.Name())
		if perr != nil {
			return nil
		}
		img, lerr := loadImageFile(path)
		if lerr != nil || img == nil {
			// leave unreadable embedded images behind, the PDF may
			// still have usable pages
			return nil
		}
		out = append(out, PageImage{Page: page, Image: img})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out, nil
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // extraction dir is ours
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}

func pageFromFilename(name string) (int, error) {
	if !strings.HasPrefix(name, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return page, nil
}

// parsePageRange parses "1-5", "1,3,5" or a mixture of both.
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		token, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, token...)
	}
	return pages, nil
}

func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", bounds[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", bounds[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}
