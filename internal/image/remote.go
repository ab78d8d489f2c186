package image

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/mymoto/themekit/internal/version"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 10 * time.Second

// Remote downloads images over HTTP and keeps them in a cache directory so
// the same URL is fetched once.
type Remote struct {
	fs       afero.Fs
	cacheDir string
	client   *http.Client
	logger   hclog.Logger
}

// NewRemote returns a Remote caching into cacheDir on fs.
func NewRemote(fs afero.Fs, cacheDir string, logger hclog.Logger) *Remote {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Remote{
		fs:       fs,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logger,
	}
}

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// CachePath returns where url is cached.
func (r *Remote) CachePath(url string) string {
	return filepath.Join(r.cacheDir, cacheName(url))
}

// Fetch downloads url unless it is already cached and returns the cached path.
func (r *Remote) Fetch(ctx context.Context, url string) (string, error) {
	if !IsRemote(url) {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	path := r.CachePath(url)
	if ok, _ := afero.Exists(r.fs, path); ok {
		r.logger.Debug("using cached image", "url", url, "path", path)
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "themekit/"+version.Version)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("image too large: more than %d bytes", MaxFileSize)
	}

	if err := r.fs.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := afero.WriteFile(r.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	r.logger.Debug("downloaded image", "url", url, "path", path, "bytes", len(data))
	return path, nil
}

// cacheName hashes url and keeps its extension, defaulting to .png.
func cacheName(url string) string {
	sum := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if i := strings.IndexAny(ext, "?#"); i != -1 {
		ext = ext[:i]
	}
	ext = strings.ToLower(ext)
	if !IsImageFile("x" + ext) {
		ext = ".png"
	}
	return fmt.Sprintf("%x%s", sum[:16], ext)
}
