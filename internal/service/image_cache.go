package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ImageCache downloads third-party catalog images once into the static
// directory and hands back the local path they are served from.
type ImageCache struct {
	staticDir  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewImageCache(staticDir string, logger *slog.Logger) (*ImageCache, error) {
	for _, sub := range []string{"images/agents", "images/maps"} {
		if err := os.MkdirAll(filepath.Join(staticDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create image cache dir: %w", err)
		}
	}

	return &ImageCache{
		staticDir:  staticDir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Cache fetches url into images/<subdir>/<filename> unless it is already
// present, and returns the serving path ("/static/images/..."). On
// download failure the remote URL is returned unchanged so the caller
// still has a usable image reference.
func (c *ImageCache) Cache(ctx context.Context, url, subdir, filename string) string {
	if url == "" {
		return ""
	}

	relPath := filepath.Join("images", subdir, filename)
	localPath := filepath.Join(c.staticDir, relPath)
	servePath := "/static/" + filepath.ToSlash(relPath)

	if _, err := os.Stat(localPath); err == nil {
		return servePath
	}

	if err := c.download(ctx, url, localPath); err != nil {
		c.logger.Warn("image cache download failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return url
	}

	return servePath
}

func (c *ImageCache) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}
