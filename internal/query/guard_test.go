package query

import (
	"errors"
	"testing"
)

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		allowed bool
	}{
		{name: "select", sql: "SELECT SUM(total_sales) FROM total_sales;", allowed: true},
		{name: "lowercase with", sql: "with x as (select 1) select * from x", allowed: true},
		{name: "parenthesized", sql: "(SELECT 1) UNION (SELECT 2);", allowed: true},
		{name: "leading comment", sql: "-- total\nSELECT 1;", allowed: true},
		{name: "semicolon in literal", sql: "SELECT 'a;b' AS v;", allowed: true},
		{name: "double trailing semicolon", sql: "SELECT 1;;", allowed: true},
		{name: "delete", sql: "DELETE FROM ad_sales;", allowed: false},
		{name: "drop", sql: "DROP TABLE eligibility;", allowed: false},
		{name: "stacked", sql: "SELECT 1; DROP TABLE ad_sales;", allowed: false},
		{name: "comment hides keyword", sql: "/* SELECT */ UPDATE ad_sales SET clicks = 0", allowed: false},
		{name: "unterminated literal", sql: "SELECT 'oops", allowed: false},
		{name: "empty", sql: "   ", allowed: false},
		{name: "cte delete", sql: "WITH d AS (DELETE FROM ad_sales RETURNING *) SELECT count(*) FROM d", allowed: false},
		{name: "cte update", sql: "WITH u AS (UPDATE ad_sales SET clicks = 0 RETURNING item_id) SELECT * FROM u", allowed: false},
		{name: "cte insert", sql: "with i as (insert into eligibility values ('2025-06-01', 1, true, '') returning 1) select * from i", allowed: false},
		{name: "read_text", sql: "SELECT * FROM read_text('/etc/hostname')", allowed: false},
		{name: "read_csv_auto spaced", sql: "SELECT * FROM READ_CSV_AUTO ('/etc/passwd')", allowed: false},
		{name: "glob", sql: "SELECT * FROM glob('/etc/*')", allowed: false},
		{name: "literal as table", sql: "SELECT * FROM '/etc/passwd.csv'", allowed: false},
		{name: "literal join source", sql: "SELECT * FROM ad_sales JOIN 'x.parquet' USING (item_id)", allowed: false},
		{name: "keyword in literal", sql: "SELECT 'delete me' AS note, 'read_text(x)' AS f", allowed: true},
		{name: "keyword substring in column", sql: "SELECT updated_at, deleted FROM eligibility", allowed: true},
		{name: "quoted identifier", sql: `SELECT "update" FROM ad_sales`, allowed: true},
		{name: "extract from literal", sql: "SELECT EXTRACT(YEAR FROM '2025-06-01'::DATE) AS y, TRIM(BOTH ' ' FROM ' a ') AS t", allowed: true},
		{name: "literal subquery source", sql: "SELECT * FROM (SELECT * FROM 'x.csv') t", allowed: false},
		{name: "literal comparison", sql: "SELECT * FROM eligibility WHERE message = 'from x'", allowed: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckReadOnly(tc.sql)
			if tc.allowed && err != nil {
				t.Fatalf("CheckReadOnly(%q) error = %v", tc.sql, err)
			}
			if !tc.allowed && !errors.Is(err, ErrStatementNotAllowed) {
				t.Fatalf("CheckReadOnly(%q) error = %v, want ErrStatementNotAllowed", tc.sql, err)
			}
		})
	}
}

func TestStripTrailingSemicolons(t *testing.T) {
	if got := StripTrailingSemicolons("  SELECT 1 ; ; "); got != "SELECT 1" {
		t.Fatalf("StripTrailingSemicolons() = %q", got)
	}
}

func TestResultRecords(t *testing.T) {
	result := Result{
		Columns: []string{"item_id", "total_sales"},
		Rows:    [][]any{{int64(1), 10.5}, {int64(2), nil}},
	}
	records := result.Records()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d", len(records))
	}
	if records[0]["item_id"] != int64(1) || records[0]["total_sales"] != 10.5 {
		t.Fatalf("records[0] = %#v", records[0])
	}
	if value, ok := records[1]["total_sales"]; !ok || value != nil {
		t.Fatalf("records[1] = %#v", records[1])
	}
}
