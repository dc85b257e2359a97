package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/adsight/adsight/internal/observability"
	"github.com/adsight/adsight/internal/query"
)

type Options struct {
	ReadOnly bool
	// ReadOnlyTx wraps each query in a READ ONLY transaction that is always
	// rolled back. go-duckdb does not support read-only transactions, so this
	// is meant for Postgres.
	ReadOnlyTx bool
	Timeout    time.Duration
	MaxRows    int
}

// Executor runs SQL text against the analytics database.
type Executor struct {
	db   *sql.DB
	opts Options
}

func NewExecutor(db *sql.DB, opts Options) *Executor {
	return &Executor{db: db, opts: opts}
}

func (e *Executor) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if e.db == nil {
		return query.Result{}, fmt.Errorf("database is required")
	}
	sqlText := strings.TrimSpace(request.SQL)
	if sqlText == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}
	if e.opts.ReadOnly {
		if err := query.CheckReadOnly(sqlText); err != nil {
			return query.Result{}, err
		}
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	maxRows := request.MaxRows
	if maxRows <= 0 || (e.opts.MaxRows > 0 && maxRows > e.opts.MaxRows) {
		maxRows = e.opts.MaxRows
	}

	start := time.Now()
	result, err := e.run(ctx, query.StripTrailingSemicolons(sqlText), maxRows)
	result.Duration = time.Since(start)
	observability.ObserveQuery(result.Duration, err)
	if err != nil {
		return query.Result{}, err
	}
	return result, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (e *Executor) run(ctx context.Context, sqlText string, maxRows int) (query.Result, error) {
	if !e.opts.ReadOnlyTx {
		return e.collect(ctx, e.db, sqlText, maxRows)
	}
	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return query.Result{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return e.collect(ctx, tx, sqlText, maxRows)
}

func (e *Executor) collect(ctx context.Context, q queryer, sqlText string, maxRows int) (query.Result, error) {
	rows, err := q.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}
	numeric := numericColumns(rows)

	resultRows := make([][]any, 0)
	truncated := false
	for rows.Next() {
		if maxRows > 0 && len(resultRows) >= maxRows {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values, numeric))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{
		Columns:   columns,
		Rows:      resultRows,
		Truncated: truncated,
	}, nil
}

// numericColumns flags NUMERIC/DECIMAL columns, which pgx hands back as text.
func numericColumns(rows *sql.Rows) []bool {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil
	}
	flags := make([]bool, len(types))
	for i, columnType := range types {
		name := strings.ToUpper(columnType.DatabaseTypeName())
		flags[i] = name == "NUMERIC" || strings.HasPrefix(name, "DECIMAL")
	}
	return flags
}

type float64Valuer interface {
	Float64() float64
}

func normalizeValues(values []any, numeric []bool) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		isNumeric := i < len(numeric) && numeric[i]
		normalized[i] = normalizeValue(value, isNumeric)
	}
	return normalized
}

func normalizeValue(value any, numeric bool) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case []byte:
		if numeric {
			return parseNumeric(string(typed))
		}
		return string(typed)
	case string:
		if numeric {
			return parseNumeric(typed)
		}
		return typed
	case float64:
		return finiteOrNil(typed)
	case float32:
		return finiteOrNil(float64(typed))
	case *big.Int:
		if typed == nil {
			return nil
		}
		if typed.IsInt64() {
			return typed.Int64()
		}
		f, _ := new(big.Float).SetInt(typed).Float64()
		return f
	case float64Valuer:
		return finiteOrNil(typed.Float64())
	default:
		return typed
	}
}

func parseNumeric(raw string) any {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return finiteOrNil(value)
}

func finiteOrNil(value float64) any {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return value
}
