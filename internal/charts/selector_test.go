package charts

import (
	"testing"

	"github.com/adsight/adsight/internal/query"
)

func TestSelectKeywordTable(t *testing.T) {
	tests := []struct {
		question string
		want     Kind
	}{
		{question: "Show me the sales trend", want: KindSalesTrend},
		{question: "What were daily sales last week?", want: KindSalesTrend},
		{question: "What are the top 5 products by total sales?", want: KindNone},
		{question: "List the TOP PRODUCTS", want: KindTopProducts},
		{question: "Which item is best selling?", want: KindTopProducts},
		{question: "Calculate the RoAS (Return on Ad Spend)", want: KindROAS},
		{question: "How is ad performance?", want: KindROAS},
		{question: "How many products are eligible for advertising?", want: KindNone},
		{question: "Show eligible products", want: KindEligibility},
		{question: "Which products are not eligible and why? eligibility please", want: KindEligibility},
		{question: "Which product had the highest CPC (Cost Per Click)?", want: KindAdPerformance},
		{question: "Which products have the best conversion rate?", want: KindAdPerformance},
		{question: "daily sales roas", want: KindSalesTrend},
	}
	for _, tc := range tests {
		if got := Select(tc.question, nil); got != tc.want {
			t.Fatalf("Select(%q) = %q, want %q", tc.question, got, tc.want)
		}
	}
}

func TestSelectRoasWinsRegardlessOfShape(t *testing.T) {
	records := []query.Record{{"date": "2025-06-01", "total_sales": 1.0}, {"date": "2025-06-02", "total_sales": 2.0}}
	if got := Select("what is my roas", records); got != KindROAS {
		t.Fatalf("Select() = %q", got)
	}
}

func TestSelectShapeFallback(t *testing.T) {
	productRows := []query.Record{
		{"item_id": int64(1), "Total_Sales": 10.0},
		{"item_id": int64(2), "Total_Sales": 5.0},
	}
	if got := Select("what are my numbers", productRows); got != KindTopProducts {
		t.Fatalf("Select(product rows) = %q", got)
	}

	dateRows := []query.Record{
		{"date": "2025-06-01", "clicks": int64(3)},
		{"date": "2025-06-02", "clicks": int64(4)},
	}
	if got := Select("what are my numbers", dateRows); got != KindSalesTrend {
		t.Fatalf("Select(date rows) = %q", got)
	}

	itemWithoutSales := []query.Record{
		{"item_id": int64(1), "clicks": int64(3)},
		{"item_id": int64(2), "clicks": int64(4)},
	}
	if got := Select("what are my numbers", itemWithoutSales); got != KindNone {
		t.Fatalf("Select(item without sales) = %q", got)
	}
}

func TestSelectSingleRowHasNoChart(t *testing.T) {
	records := []query.Record{{"item_id": int64(1), "total_sales": 10.0, "date": "2025-06-01"}}
	if got := Select("what is my total", records); got != KindNone {
		t.Fatalf("Select() = %q", got)
	}
	if got := Select("what is my total", nil); got != KindNone {
		t.Fatalf("Select(nil) = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		got, err := ParseKind(string(kind))
		if err != nil || got != kind {
			t.Fatalf("ParseKind(%q) = %q, %v", kind, got, err)
		}
	}
	if got, err := ParseKind(" ROAS "); err != nil || got != KindROAS {
		t.Fatalf("ParseKind(ROAS) = %q, %v", got, err)
	}
	if _, err := ParseKind("histogram"); err == nil {
		t.Fatal("expected error for unknown chart type")
	}
}

func TestROASColor(t *testing.T) {
	tests := map[float64]string{
		5:    "#28a745",
		12:   "#28a745",
		4.99: "#ffc107",
		2:    "#ffc107",
		1.99: "#dc3545",
		0:    "#dc3545",
	}
	for value, want := range tests {
		if got := ROASColor(value); got != want {
			t.Fatalf("ROASColor(%v) = %q, want %q", value, got, want)
		}
	}
}

func TestBubbleSize(t *testing.T) {
	if got := BubbleSize(20); got != 5 {
		t.Fatalf("BubbleSize(20) = %v", got)
	}
	if got := BubbleSize(150); got != 15 {
		t.Fatalf("BubbleSize(150) = %v", got)
	}
	if got := BubbleSize(1000); got != 30 {
		t.Fatalf("BubbleSize(1000) = %v", got)
	}
}
