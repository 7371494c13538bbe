package storage

import (
	"context"
	"strings"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a product image link stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// ImageURLs turns a catalog image path such as "/products/8956115.jpg" into
// a URL a client can fetch.
type ImageURLs interface {
	ImageURL(ctx context.Context, imagePath string) (string, error)
}

// StaticURLs serves images from a fixed base URL. An empty base returns the
// path unchanged.
type StaticURLs struct {
	BaseURL string
}

func (s StaticURLs) ImageURL(_ context.Context, imagePath string) (string, error) {
	if imagePath == "" {
		return "", nil
	}
	if s.BaseURL == "" || strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath, nil
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(imagePath, "/"), nil
}

func objectKey(imagePath string) string {
	return strings.TrimLeft(imagePath, "/")
}
