// Package image loads logo and artwork files used to seed brand colours.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	_ "golang.org/x/image/webp" // Register WebP format
)

const (
	// MaxFileSize bounds how much of a file is read.
	MaxFileSize = 32 << 20
	// MaxPixels bounds decoded image area.
	MaxPixels = 50_000_000
)

// Loader reads images from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader over fs. A nil fs means the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Load decodes the image at path and reports its format name.
func (l *Loader) Load(path string) (image.Image, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("image path cannot be empty")
	}
	if !IsImageFile(path) {
		return nil, "", fmt.Errorf("unsupported image extension %q (supported: %s)",
			filepath.Ext(path), strings.Join(SupportedImageExtensions(), ", "))
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > MaxFileSize {
		return nil, "", fmt.Errorf("image file too large: %d bytes (maximum: %d)", info.Size(), MaxFileSize)
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, "", fmt.Errorf("image dimensions too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, format, nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return slices.Contains(SupportedImageExtensions(), strings.ToLower(filepath.Ext(path)))
}
