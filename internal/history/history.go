package history

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

var ErrNotFound = errors.New("history: not found")

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	MaxSummaryLength = 500
)

type Record struct {
	ID              int64     `json:"id"`
	Question        string    `json:"question"`
	SQLQuery        string    `json:"sql_query"`
	CreatedAt       time.Time `json:"created_at"`
	ResponseSummary string    `json:"response_summary,omitempty"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
}

type InsertInput struct {
	Question        string
	SQLQuery        string
	ResponseSummary string
	ExecutionTimeMs int64
}

type Repository interface {
	Insert(ctx context.Context, in InsertInput) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
}

// NormalizeLimit applies the default and upper bound for List.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// TruncateSummary cuts s to MaxSummaryLength runes.
func TruncateSummary(s string) string {
	if utf8.RuneCountInString(s) <= MaxSummaryLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxSummaryLength])
}
