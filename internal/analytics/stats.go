package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/adsight/adsight/internal/query"
)

// SampleRowLimit is the number of rows shown per table in DatabaseStats.
const SampleRowLimit = 3

var statsTables = []string{"eligibility", "ad_sales", "total_sales", "query_history"}

var sampleQueries = []struct {
	table string
	sql   string
}{
	{table: "total_sales", sql: `
SELECT item_id, date, total_sales, total_units_ordered
FROM total_sales
ORDER BY total_sales DESC
LIMIT %d`},
	{table: "ad_sales", sql: `
SELECT item_id, date, ad_sales, ad_spend, impressions, clicks
FROM ad_sales
WHERE ad_spend > 0
ORDER BY ad_spend DESC
LIMIT %d`},
	{table: "eligibility", sql: `
SELECT item_id, eligibility, eligibility_datetime_utc
FROM eligibility
WHERE eligibility = 'TRUE'
LIMIT %d`},
}

type TableStats struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
	Error string `json:"error,omitempty"`
}

type TableSample struct {
	Table string         `json:"table"`
	Rows  []query.Record `json:"rows"`
	Error string         `json:"error,omitempty"`
}

type DatabaseStats struct {
	Tables      []TableStats  `json:"tables"`
	Samples     []TableSample `json:"samples"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// DatabaseStats counts the rows of every known table and pulls a few sample
// rows from each data table. A failing table is reported in its entry instead
// of failing the whole call.
func (s *Service) DatabaseStats(ctx context.Context) (DatabaseStats, error) {
	if s.engine == nil {
		return DatabaseStats{}, fmt.Errorf("query engine is required")
	}

	stats := DatabaseStats{
		Tables:  make([]TableStats, 0, len(statsTables)),
		Samples: make([]TableSample, 0, len(sampleQueries)),
	}
	for _, table := range statsTables {
		entry := TableStats{Table: table}
		record, err := s.firstRecord(ctx, "SELECT COUNT(*) AS row_count FROM "+table)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Rows = query.Int(record["row_count"])
		}
		stats.Tables = append(stats.Tables, entry)
	}
	for _, sample := range sampleQueries {
		entry := TableSample{Table: sample.table, Rows: []query.Record{}}
		records, err := s.records(ctx, fmt.Sprintf(sample.sql, SampleRowLimit))
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Rows = records
		}
		stats.Samples = append(stats.Samples, entry)
	}
	if err := ctx.Err(); err != nil {
		return DatabaseStats{}, err
	}
	stats.GeneratedAt = s.now().UTC()
	return stats, nil
}
