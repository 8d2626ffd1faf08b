// Package blobstore stores top-up receipt images and hands back retrievable
// URLs. The manual settlement path requires a stored receipt before approval.
package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists a blob and returns a retrievable URL plus its storage path.
type Store interface {
	Store(ctx context.Context, data []byte, contentType string) (url, path string, err error)
}

// LocalStore writes blobs under a directory served at a base URL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore constructs a LocalStore, creating the directory when missing.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("blobstore: empty directory")
	}
	if errMkdir := os.MkdirAll(dir, 0755); errMkdir != nil {
		return nil, fmt.Errorf("blobstore: create dir: %w", errMkdir)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the blob with a collision-free name and returns its URL.
func (s *LocalStore) Store(_ context.Context, data []byte, contentType string) (string, string, error) {
	name := fmt.Sprintf("%d_%s%s", time.Now().UTC().UnixMilli(), uuid.NewString(), extensionFor(contentType))
	fullPath := filepath.Join(s.dir, name)
	if errWrite := os.WriteFile(fullPath, data, 0644); errWrite != nil {
		return "", "", fmt.Errorf("blobstore: write: %w", errWrite)
	}
	return s.baseURL + "/" + name, name, nil
}

// Dir returns the backing directory, for static file serving.
func (s *LocalStore) Dir() string { return s.dir }

// extensionFor maps common receipt content types to file extensions.
func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
