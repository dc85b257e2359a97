package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adsight/adsight/internal/observability"
	"github.com/adsight/adsight/internal/storage"
	"github.com/adsight/adsight/internal/store"
)

type format string

const (
	formatCSV     format = "csv"
	formatParquet format = "parquet"
)

func sourceFormat(key string) (format, error) {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return formatCSV, nil
	case ".parquet":
		return formatParquet, nil
	default:
		return "", fmt.Errorf("unsupported dataset format for %q", key)
	}
}

type TableSummary struct {
	Table   string `json:"table"`
	Key     string `json:"key"`
	Rows    int64  `json:"rows"`
	Bytes   int64  `json:"bytes"`
	ETag    string `json:"etag,omitempty"`
	Skipped bool   `json:"skipped"`
	// NulledCells counts, per column, source values that did not parse as
	// the column type and were stored as NULL.
	NulledCells map[string]int64 `json:"nulled_cells,omitempty"`
}

// TotalNulledCells sums NulledCells.
func (t TableSummary) TotalNulledCells() int64 {
	var total int64
	for _, cells := range t.NulledCells {
		total += cells
	}
	return total
}

type Summary struct {
	RunID    string         `json:"run_id"`
	Tables   []TableSummary `json:"tables"`
	Duration time.Duration  `json:"duration"`
}

func (s Summary) Rows(table string) int64 {
	for _, t := range s.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return 0
}

type Config struct {
	Store    storage.ObjectStore
	DB       *sql.DB
	Dialect  store.Dialect
	Manifest Manifest
	Logger   *slog.Logger
	// TempDir is where source objects are staged; empty uses os.TempDir.
	TempDir string
}

// Loader replaces the dataset tables with the contents of the source files.
type Loader struct {
	store    storage.ObjectStore
	db       *sql.DB
	dialect  store.Dialect
	manifest Manifest
	logger   *slog.Logger
	tempDir  string
	target   target
}

// target writes decoded rows for one dataset into the serving database.
type target interface {
	replace(ctx context.Context, dataset Dataset, selectSQL string) (int64, error)
}

func New(cfg Config) (*Loader, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if cfg.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if len(cfg.Manifest.Datasets) == 0 {
		cfg.Manifest = DefaultManifest()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	l := &Loader{
		store:    cfg.Store,
		db:       cfg.DB,
		dialect:  cfg.Dialect,
		manifest: cfg.Manifest,
		logger:   cfg.Logger,
		tempDir:  cfg.TempDir,
	}
	switch cfg.Dialect {
	case store.DialectPostgres:
		l.target = &postgresTarget{db: cfg.DB}
	case store.DialectDuckDB, "":
		l.dialect = store.DialectDuckDB
		l.target = &duckDBTarget{db: cfg.DB}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
	return l, nil
}

func (l *Loader) Load(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := l.logger.With(slog.String("load_run_id", summary.RunID))

	workDir, err := os.MkdirTemp(l.tempDir, "adsight-load-")
	if err != nil {
		return summary, fmt.Errorf("create load temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	for _, dataset := range l.manifest.Datasets {
		tableSummary := TableSummary{Table: dataset.Table, Key: dataset.Key}
		err := l.loadDataset(ctx, workDir, dataset, &tableSummary)
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			tableSummary.Skipped = true
			logger.Warn("dataset source missing; skipping",
				slog.String("table", dataset.Table),
				slog.String("key", dataset.Key),
			)
		case err != nil:
			logger.Error("dataset load failed",
				slog.String("table", dataset.Table),
				slog.String("key", dataset.Key),
				slog.Any("error", err),
			)
			return summary, fmt.Errorf("load %s: %w", dataset.Table, err)
		default:
			observability.AddRowsLoaded(dataset.Table, tableSummary.Rows)
			if nulled := tableSummary.TotalNulledCells(); nulled > 0 {
				for column, cells := range tableSummary.NulledCells {
					observability.AddNulledCells(dataset.Table, column, cells)
				}
				logger.Warn("dataset values failed to parse; stored as NULL",
					slog.String("table", dataset.Table),
					slog.Int64("cells", nulled),
					slog.Any("columns", tableSummary.NulledCells),
				)
			}
			logger.Info("dataset loaded",
				slog.String("table", dataset.Table),
				slog.Int64("rows", tableSummary.Rows),
				slog.Int64("bytes", tableSummary.Bytes),
			)
		}
		summary.Tables = append(summary.Tables, tableSummary)
	}

	summary.Duration = time.Since(start)
	logger.Info("data load complete", slog.Duration("duration", summary.Duration))
	return summary, nil
}

func (l *Loader) loadDataset(ctx context.Context, workDir string, dataset Dataset, out *TableSummary) error {
	srcFormat, err := sourceFormat(dataset.Key)
	if err != nil {
		return err
	}

	localPath := filepath.Join(workDir, dataset.Table+"."+string(srcFormat))
	info, err := l.store.Fetch(ctx, dataset.Key, localPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return err
		}
		return fmt.Errorf("fetch %q: %w", dataset.Key, err)
	}
	out.Bytes = info.Size
	out.ETag = info.ETag

	nulled, err := l.countCastFailures(ctx, dataset, srcFormat, localPath)
	if err != nil {
		return err
	}
	out.NulledCells = nulled

	rows, err := l.target.replace(ctx, dataset, decodeSQL(dataset, srcFormat, localPath))
	if err != nil {
		return err
	}
	out.Rows = rows
	return nil
}

// decodeSQL selects the dataset columns from a staged file, casting each to
// its fixed type. Values that do not parse become NULL.
func decodeSQL(dataset Dataset, srcFormat format, localPath string) string {
	columns := make([]string, 0, len(dataset.Columns))
	for _, column := range dataset.Columns {
		columns = append(columns, fmt.Sprintf("TRY_CAST(%s AS %s) AS %s", quoteIdent(column.Name), column.decodeType(), quoteIdent(column.Name)))
	}

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), sourceSQL(srcFormat, localPath))
}

func sourceSQL(srcFormat format, localPath string) string {
	if srcFormat == formatParquet {
		return fmt.Sprintf("read_parquet(%s)", quoteString(localPath))
	}
	return fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteString(localPath))
}

// castFailuresSQL counts, per typed column, the non-blank source values that
// TRY_CAST turns into NULL. It returns "" when every column is VARCHAR.
func castFailuresSQL(dataset Dataset, srcFormat format, localPath string) (string, []string) {
	var counts, names []string
	for _, column := range dataset.Columns {
		if column.decodeType() == "VARCHAR" {
			continue
		}
		ident := quoteIdent(column.Name)
		counts = append(counts, fmt.Sprintf(
			"COUNT(*) FILTER (WHERE %s IS NOT NULL AND TRIM(CAST(%s AS VARCHAR)) <> '' AND TRY_CAST(%s AS %s) IS NULL)",
			ident, ident, ident, column.decodeType(),
		))
		names = append(names, column.Name)
	}
	if len(counts) == 0 {
		return "", nil
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(counts, ", "), sourceSQL(srcFormat, localPath)), names
}

// countCastFailures runs castFailuresSQL on a DuckDB connection: the serving
// database for DuckDB, a private in-memory one for Postgres. Columns without
// failures are left out of the result.
func (l *Loader) countCastFailures(ctx context.Context, dataset Dataset, srcFormat format, localPath string) (map[string]int64, error) {
	countSQL, names := castFailuresSQL(dataset, srcFormat, localPath)
	if countSQL == "" {
		return nil, nil
	}

	decoder := l.db
	if l.dialect != store.DialectDuckDB {
		var err error
		decoder, err = sql.Open("duckdb", "")
		if err != nil {
			return nil, fmt.Errorf("open decoder: %w", err)
		}
		defer func() { _ = decoder.Close() }()
	}

	counts := make([]int64, len(names))
	targets := make([]any, len(names))
	for i := range counts {
		targets[i] = &counts[i]
	}
	if err := decoder.QueryRowContext(ctx, countSQL).Scan(targets...); err != nil {
		return nil, fmt.Errorf("count cast failures: %w", err)
	}

	var nulled map[string]int64
	for i, name := range names {
		if counts[i] == 0 {
			continue
		}
		if nulled == nil {
			nulled = make(map[string]int64)
		}
		nulled[name] = counts[i]
	}
	return nulled, nil
}

func createTableSQL(dataset Dataset, dialect store.Dialect) string {
	columns := make([]string, 0, len(dataset.Columns))
	for _, column := range dataset.Columns {
		columns = append(columns, quoteIdent(column.Name)+" "+column.sqlType(dialect))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(dataset.Table), strings.Join(columns, ", "))
}

func createIndexSQL(dataset Dataset, index Index) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", quoteIdent(index.Name), quoteIdent(dataset.Table), quoteIdent(index.Column))
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
