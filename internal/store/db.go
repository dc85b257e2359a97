package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectDuckDB   Dialect = "duckdb"
)

const duckDBScheme = "duckdb://"

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DialectForDSN maps postgres URLs to pgx and everything else to an embedded
// DuckDB database file. The returned string is the driver-level DSN.
func DialectForDSN(dsn string) (Dialect, string) {
	trimmed := strings.TrimSpace(dsn)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, trimmed
	case strings.HasPrefix(lower, duckDBScheme):
		return DialectDuckDB, duckDBPath(trimmed[len(duckDBScheme):])
	default:
		return DialectDuckDB, duckDBPath(trimmed)
	}
}

func duckDBPath(path string) string {
	if path == ":memory:" {
		return ""
	}
	return path
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "duckdb"
}

func Open(ctx context.Context, cfg DBConfig) (*sql.DB, Dialect, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, "", fmt.Errorf("database dsn is required")
	}

	dialect, dsn := DialectForDSN(cfg.DSN)
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s db: %w", dialect, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 && dialect == DialectPostgres {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s db: %w", dialect, err)
	}

	return db, dialect, nil
}

// DisableExternalAccess stops DuckDB from reading host files or URLs for the
// rest of the process. It cannot be re-enabled, so call it after the loader
// has finished. Postgres is left alone.
func DisableExternalAccess(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if dialect != DialectDuckDB {
		return nil
	}
	if _, err := db.ExecContext(ctx, "SET GLOBAL enable_external_access = false"); err != nil {
		return fmt.Errorf("disable duckdb external access: %w", err)
	}
	return nil
}
