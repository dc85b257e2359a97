package charts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/adsight/adsight/internal/query"
	"github.com/adsight/adsight/internal/query/sqldb"
)

const seedSQL = `
CREATE TABLE eligibility (eligibility_datetime_utc TEXT, item_id BIGINT, eligibility TEXT, message TEXT);
CREATE TABLE ad_sales (date TEXT, item_id BIGINT, ad_sales DOUBLE, impressions BIGINT, ad_spend DOUBLE, clicks BIGINT, units_sold BIGINT);
CREATE TABLE total_sales (date TEXT, item_id BIGINT, total_sales DOUBLE, total_units_ordered BIGINT);
INSERT INTO eligibility VALUES
	('2025-06-01 08:00:00', 1, 'FALSE', 'pending review'),
	('2025-06-02 08:00:00', 1, 'TRUE', ''),
	('2025-06-01 08:00:00', 2, 'FALSE', 'missing images'),
	('2025-06-01 08:00:00', 3, 'TRUE', '');
INSERT INTO ad_sales VALUES
	('2025-06-01', 1, 600.0, 1000, 100.0, 50, 6),
	('2025-06-01', 2, 60.0, 500, 20.0, 10, 1),
	('2025-06-01', 3, 15.0, 200, 10.0, 5, 0);
INSERT INTO total_sales VALUES
	('2025-06-01', 1, 700.0, 7),
	('2025-06-02', 1, 300.0, 3),
	('2025-06-01', 2, 90.0, 2),
	('2025-06-02', 3, 0.0, 0);
`

func newTestBuilder(t *testing.T, seed bool) *Builder {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	script := seedSQL
	if !seed {
		script = script[:strings.Index(script, "INSERT")]
	}
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewBuilder(sqldb.NewExecutor(db, sqldb.Options{ReadOnly: true}))
}

func TestBuildSalesTrend(t *testing.T) {
	figure, err := newTestBuilder(t, true).Build(context.Background(), KindSalesTrend, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if figure == nil || len(figure.Data) != 1 {
		t.Fatalf("figure = %#v", figure)
	}
	trace := figure.Data[0]
	if trace.Type != "scatter" || trace.Mode != "lines+markers" || trace.Line.Color != "#28a745" {
		t.Fatalf("trace = %#v", trace)
	}
	if len(trace.X) != 2 || trace.X[0] != "2025-06-01" || trace.Y[0] != 790.0 {
		t.Fatalf("x/y = %#v / %#v", trace.X, trace.Y)
	}
	if figure.Layout.Title.Text != "Daily Sales Trend" || figure.Layout.Height != 400 {
		t.Fatalf("layout = %#v", figure.Layout)
	}
}

func TestBuildTopProductsUsesLimit(t *testing.T) {
	figure, err := newTestBuilder(t, true).Build(context.Background(), KindTopProducts, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	trace := figure.Data[0]
	if len(trace.X) != 1 || trace.X[0] != "1" || trace.Y[0] != 1000.0 || trace.Text[0] != "1000.00" {
		t.Fatalf("trace = %#v", trace)
	}
	if figure.Layout.Title.Text != "Top 1 Products by Sales" {
		t.Fatalf("title = %q", figure.Layout.Title.Text)
	}
}

func TestBuildROASColorsBars(t *testing.T) {
	figure, err := newTestBuilder(t, true).Build(context.Background(), KindROAS, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	trace := figure.Data[0]
	colors, ok := trace.Marker.Color.([]string)
	if !ok {
		t.Fatalf("marker color = %#v", trace.Marker.Color)
	}
	want := []string{"#28a745", "#ffc107", "#dc3545"}
	if len(colors) != len(want) {
		t.Fatalf("colors = %#v", colors)
	}
	for i := range want {
		if colors[i] != want[i] {
			t.Fatalf("colors = %#v, want %#v", colors, want)
		}
	}
	if !strings.Contains(figure.Layout.Title.Text, "Top 15") {
		t.Fatalf("title = %q", figure.Layout.Title.Text)
	}
}

func TestBuildEligibilityUsesLatestRecordPerItem(t *testing.T) {
	figure, err := newTestBuilder(t, true).Build(context.Background(), KindEligibility, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	trace := figure.Data[0]
	if trace.Type != "pie" || len(trace.Labels) != 2 {
		t.Fatalf("trace = %#v", trace)
	}
	if trace.Labels[0] != "Eligible" || trace.Values[0] != int64(2) {
		t.Fatalf("eligible slice = %v / %v", trace.Labels, trace.Values)
	}
	if trace.Labels[1] != "Not Eligible" || trace.Values[1] != int64(1) {
		t.Fatalf("not eligible slice = %v / %v", trace.Labels, trace.Values)
	}
}

func TestBuildAdPerformanceFiltersLowSpend(t *testing.T) {
	figure, err := newTestBuilder(t, true).Build(context.Background(), KindAdPerformance, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	trace := figure.Data[0]
	if len(trace.X) != 2 {
		t.Fatalf("points = %d, want 2 (spend > 10 only)", len(trace.X))
	}
	if trace.X[0] != 2.0 || trace.Y[0] != 12.0 {
		t.Fatalf("first point = %v,%v", trace.X[0], trace.Y[0])
	}
	if figure.Layout.Height != 500 {
		t.Fatalf("height = %d", figure.Layout.Height)
	}
	body, err := json.Marshal(figure)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"colorscale":"Viridis"`) {
		t.Fatalf("figure json = %s", body)
	}
}

func TestBuildReturnsNilWithoutRows(t *testing.T) {
	builder := newTestBuilder(t, false)
	for _, kind := range Kinds {
		figure, err := builder.Build(context.Background(), kind, 0)
		if err != nil {
			t.Fatalf("Build(%q) error = %v", kind, err)
		}
		if figure != nil {
			t.Fatalf("Build(%q) = %#v, want nil", kind, figure)
		}
	}
}

type failingEngine struct{}

func (failingEngine) Execute(context.Context, query.Request) (query.Result, error) {
	return query.Result{}, errors.New("connection lost")
}

func TestBuildPropagatesQueryErrors(t *testing.T) {
	_, err := NewBuilder(failingEngine{}).Build(context.Background(), KindSalesTrend, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewBuilder(failingEngine{}).Build(context.Background(), Kind("bogus"), 0); err == nil {
		t.Fatal("expected unknown kind error")
	}
}
