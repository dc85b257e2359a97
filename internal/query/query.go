package query

import (
	"context"
	"errors"
	"time"
)

var ErrStatementNotAllowed = errors.New("only a single SELECT statement is allowed")

type Request struct {
	SQL string
	// MaxRows caps the rows read from the driver; zero means unlimited.
	MaxRows int
}

type Result struct {
	Columns   []string
	Rows      [][]any
	Truncated bool
	Duration  time.Duration
}

// Record is one result row keyed by column name.
type Record map[string]any

func (r Result) Records() []Record {
	records := make([]Record, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(Record, len(r.Columns))
		for i, column := range r.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}
