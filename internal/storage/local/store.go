package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adsight/adsight/internal/storage"
)

// Store serves dataset files from a directory on disk. Keys are slash
// separated and resolved below the root.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local store root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return storage.ObjectInfo{}, err
	}
	target, normalized, err := s.resolve(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ObjectInfo{}, storage.ErrObjectNotFound
		}
		return storage.ObjectInfo{}, fmt.Errorf("stat object %q: %w", normalized, err)
	}
	if info.IsDir() {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: normalized, Size: info.Size(), LastModified: info.ModTime().UTC()}, nil
}

func (s *Store) Fetch(ctx context.Context, key, dstPath string) (storage.ObjectInfo, error) {
	info, err := s.Stat(ctx, key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	target, _, err := s.resolve(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	src, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ObjectInfo{}, storage.ErrObjectNotFound
		}
		return storage.ObjectInfo{}, fmt.Errorf("open object %q: %w", info.Key, err)
	}
	defer func() { _ = src.Close() }()

	written, etag, err := storage.WriteFile(dstPath, src)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("fetch object %q: %w", info.Key, err)
	}
	info.Size = written
	info.ETag = etag
	return info, nil
}

func (s *Store) resolve(key string) (string, string, error) {
	normalized, err := storage.NormalizeKey(key)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(normalized)), normalized, nil
}
