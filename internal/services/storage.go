package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidObjectKey = errors.New("object key escapes the upload directory")

// Storage persists uploaded objects and returns their public URL
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// LocalStorage writes objects below a directory served at /uploads
type LocalStorage struct {
	dir     string
	urlBase string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir, urlBase: "/uploads"}
}

func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	root := filepath.Clean(s.dir)
	dest := filepath.Join(root, filepath.FromSlash(key))
	if rel, err := filepath.Rel(root, dest); err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectKey, key)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return path.Join(s.urlBase, key), nil
}
