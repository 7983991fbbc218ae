package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalUploader writes images to a directory served as static files.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the upload directory if needed. baseURL is the
// public prefix under which the directory is served, e.g. "/uploads".
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload directory: %w", err)
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalUploader{dir: dir, baseURL: baseURL}, nil
}

// Upload writes the image under a sanitised filename and returns its URL.
func (u *LocalUploader) Upload(_ context.Context, filename string, data []byte) (string, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return "", errors.New("storage: filename is required")
	}

	target := filepath.Join(u.dir, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write image: %w", err)
	}
	return u.baseURL + "/" + filename, nil
}

// Dir returns the backing directory, for static file serving.
func (u *LocalUploader) Dir() string {
	return u.dir
}
