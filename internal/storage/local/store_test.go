package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adsight/adsight/internal/storage"
)

func writeFixture(t *testing.T, root, key, body string) {
	t.Helper()
	target := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestStatAndFetch(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "datasets/ad_sales.csv", "item_id\n1\n")
	store, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	stat, err := store.Stat(ctx, "/datasets/ad_sales.csv")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if stat.Key != "datasets/ad_sales.csv" || stat.Size != 10 {
		t.Fatalf("stat = %+v", stat)
	}

	dst := filepath.Join(t.TempDir(), "nested", "ad_sales.csv")
	info, err := store.Fetch(ctx, "datasets/ad_sales.csv", dst)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if info.Size != 10 || info.ETag == "" {
		t.Fatalf("info = %+v", info)
	}
	body, err := os.ReadFile(dst)
	if err != nil || string(body) != "item_id\n1\n" {
		t.Fatalf("copy = %q, %v", body, err)
	}
}

func TestMissingObjectReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "dir.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if _, err := store.Stat(ctx, "missing.csv"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() error = %v", err)
	}
	if _, err := store.Stat(ctx, "dir.csv"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat(dir) error = %v", err)
	}
	if _, err := store.Fetch(ctx, "missing.csv", filepath.Join(t.TempDir(), "x.csv")); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Fetch() error = %v", err)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := store.Stat(context.Background(), "../etc/passwd"); err == nil || errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "eligibility.csv", "a\n")
	store, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Fetch(ctx, "eligibility.csv", filepath.Join(t.TempDir(), "e.csv")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v", err)
	}
}
