package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectStore is where the dataset source files live. The loader only reads
// from it: Stat to check a key and Fetch to stage a copy on local disk.
type ObjectStore interface {
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Fetch(ctx context.Context, key, dstPath string) (ObjectInfo, error)
}

// NormalizeKey returns the cleaned slash form of key. Keys that are empty or
// climb above the store root are rejected.
func NormalizeKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(filepath.ToSlash(key), "/"))
	if trimmed == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}

// WriteFile copies body into dstPath through a temp file in the same
// directory and returns the byte count and hex md5 of what was written.
func WriteFile(dstPath string, body io.Reader) (int64, string, error) {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", fmt.Errorf("create dir for %q: %w", dstPath, err)
	}
	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return 0, "", fmt.Errorf("create temp for %q: %w", dstPath, err)
	}
	hash := md5.New()
	written, err := io.Copy(io.MultiWriter(tmp, hash), body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return written, "", fmt.Errorf("write %q: %w", dstPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return written, "", fmt.Errorf("close %q: %w", dstPath, err)
	}
	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		_ = os.Remove(tmp.Name())
		return written, "", fmt.Errorf("rename into %q: %w", dstPath, err)
	}
	return written, hex.EncodeToString(hash.Sum(nil)), nil
}
