package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adsight/adsight/internal/history"
	"github.com/adsight/adsight/internal/observability"
)

// Repository stores query history in any database/sql backend that
// understands $n placeholders and RETURNING (PostgreSQL, DuckDB).
type Repository struct {
	db *sql.DB
}

var _ history.Repository = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, in history.InsertInput) (record history.Record, err error) {
	defer func() { observability.ObserveHistoryWrite(err) }()

	query := `
INSERT INTO query_history (question, sql_query, response_summary, execution_time_ms)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`

	summary := history.TruncateSummary(in.ResponseSummary)
	var createdAt time.Time
	var id int64
	if err = r.db.QueryRowContext(ctx, query, in.Question, in.SQLQuery, nullString(summary), in.ExecutionTimeMs).Scan(&id, &createdAt); err != nil {
		return history.Record{}, fmt.Errorf("insert query history: %w", err)
	}
	return history.Record{
		ID:              id,
		Question:        in.Question,
		SQLQuery:        in.SQLQuery,
		CreatedAt:       createdAt,
		ResponseSummary: summary,
		ExecutionTimeMs: in.ExecutionTimeMs,
	}, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]history.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question, sql_query, created_at, response_summary, execution_time_ms
FROM query_history
ORDER BY created_at DESC, id DESC
LIMIT $1`, history.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]history.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan query history row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query history rows: %w", err)
	}
	return records, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (history.Record, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, question, sql_query, created_at, response_summary, execution_time_ms
FROM query_history
WHERE id = $1`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Record{}, history.ErrNotFound
		}
		return history.Record{}, fmt.Errorf("get query history: %w", err)
	}
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (history.Record, error) {
	var record history.Record
	var summary sql.NullString
	var elapsed sql.NullInt64
	if err := row.Scan(&record.ID, &record.Question, &record.SQLQuery, &record.CreatedAt, &summary, &elapsed); err != nil {
		return history.Record{}, err
	}
	record.ResponseSummary = summary.String
	record.ExecutionTimeMs = elapsed.Int64
	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
