package render

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
)

// SupportedExtensions lists the file extensions images can be written as.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// ImageError wraps a failed image operation.
type ImageError struct {
	Op   string
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Save writes img to path. An existing file is left alone unless overwrite
// is set; the returned bool reports whether a file was written.
func Save(img image.Image, path string, overwrite bool) (bool, error) {
	if path == "" {
		return false, &ImageError{Op: "save", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return false, &ImageError{Op: "save", Path: path, Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return false, &ImageError{Op: "save", Path: path, Err: err}
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return false, &ImageError{Op: "save", Path: path, Err: err}
	}
	return true, nil
}
