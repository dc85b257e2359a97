package loader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/adsight/adsight/internal/store"
)

// duckDBTarget decodes straight into the serving database.
type duckDBTarget struct {
	db *sql.DB
}

func (t *duckDBTarget) replace(ctx context.Context, dataset Dataset, selectSQL string) (int64, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin load tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(dataset.Table)); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(dataset, store.DialectDuckDB)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	result, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s %s", quoteIdent(dataset.Table), selectSQL))
	if err != nil {
		return 0, fmt.Errorf("insert rows: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	for _, index := range dataset.Indexes {
		if _, err := tx.ExecContext(ctx, createIndexSQL(dataset, index)); err != nil {
			return 0, fmt.Errorf("create index %s: %w", index.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load tx: %w", err)
	}
	return rows, nil
}

// postgresTarget decodes with a private in-memory DuckDB and streams the rows
// into PostgreSQL with COPY.
type postgresTarget struct {
	db *sql.DB
}

func (t *postgresTarget) replace(ctx context.Context, dataset Dataset, selectSQL string) (int64, error) {
	decoder, err := sql.Open("duckdb", "")
	if err != nil {
		return 0, fmt.Errorf("open decoder: %w", err)
	}
	defer func() { _ = decoder.Close() }()

	rows, err := decoder.QueryContext(ctx, selectSQL)
	if err != nil {
		return 0, fmt.Errorf("decode source: %w", err)
	}
	defer func() { _ = rows.Close() }()

	conn, err := t.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var copied int64
	err = conn.Raw(func(driverConn any) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		pgConn := stdConn.Conn()

		tx, err := pgConn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin load tx: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdent(dataset.Table)); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if _, err := tx.Exec(ctx, createTableSQL(dataset, store.DialectPostgres)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		columns := make([]string, 0, len(dataset.Columns))
		for _, column := range dataset.Columns {
			columns = append(columns, column.Name)
		}
		copied, err = tx.CopyFrom(ctx, pgx.Identifier{dataset.Table}, columns, newRowSource(rows, len(columns)))
		if err != nil {
			return fmt.Errorf("copy rows: %w", err)
		}
		for _, index := range dataset.Indexes {
			if _, err := tx.Exec(ctx, createIndexSQL(dataset, index)); err != nil {
				return fmt.Errorf("create index %s: %w", index.Name, err)
			}
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// rowSource adapts *sql.Rows to pgx.CopyFromSource.
type rowSource struct {
	rows   *sql.Rows
	values []any
	err    error
}

func newRowSource(rows *sql.Rows, width int) *rowSource {
	return &rowSource{rows: rows, values: make([]any, width)}
}

func (s *rowSource) Next() bool {
	if s.err != nil || !s.rows.Next() {
		return false
	}
	targets := make([]any, len(s.values))
	for i := range s.values {
		targets[i] = &s.values[i]
	}
	if err := s.rows.Scan(targets...); err != nil {
		s.err = fmt.Errorf("scan decoded row: %w", err)
		return false
	}
	return true
}

func (s *rowSource) Values() ([]any, error) {
	return s.values, nil
}

func (s *rowSource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}
