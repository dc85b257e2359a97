package history

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultListLimit},
		{in: -4, want: DefaultListLimit},
		{in: 25, want: 25},
		{in: 1000, want: MaxListLimit},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncateSummary(t *testing.T) {
	short := "Sales were strong."
	if got := TruncateSummary(short); got != short {
		t.Fatalf("TruncateSummary(short) = %q", got)
	}

	long := strings.Repeat("📈", 600)
	got := TruncateSummary(long)
	if utf8.RuneCountInString(got) != MaxSummaryLength {
		t.Fatalf("rune count = %d, want %d", utf8.RuneCountInString(got), MaxSummaryLength)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncated summary is not valid utf-8")
	}
}
