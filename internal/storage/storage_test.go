package storage

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "/datasets/ad_sales.csv", want: "datasets/ad_sales.csv"},
		{key: "a/./b/../eligibility.csv", want: "a/eligibility.csv"},
		{key: " total_sales.parquet ", want: "total_sales.parquet"},
		{key: "", wantErr: true},
		{key: "/", wantErr: true},
		{key: "../secrets.txt", wantErr: true},
		{key: "a/../../b", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeKey(%q) = %q, want error", tc.key, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeKey(%q) error = %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestWriteFileCreatesParentsAndHashes(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "copy.csv")
	written, etag, err := WriteFile(dst, strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if written != 4 {
		t.Fatalf("written = %d", written)
	}
	sum := md5.Sum([]byte("a,b\n"))
	if etag != hex.EncodeToString(sum[:]) {
		t.Fatalf("etag = %q", etag)
	}
	body, err := os.ReadFile(dst)
	if err != nil || string(body) != "a,b\n" {
		t.Fatalf("body = %q, %v", body, err)
	}
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}
