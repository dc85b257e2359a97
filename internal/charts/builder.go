package charts

import (
	"context"
	"fmt"
	"math"

	"github.com/adsight/adsight/internal/query"
)

const (
	DefaultTopProductsLimit = 10
	DefaultROASLimit        = 15
	maxLimit                = 100
)

// Builder renders the canned charts from the analytics tables.
type Builder struct {
	engine query.Engine
}

func NewBuilder(engine query.Engine) *Builder {
	return &Builder{engine: engine}
}

// Build returns nil without error when the chart query yields no rows. limit
// applies to the top products and RoAS charts; zero selects the default.
func (b *Builder) Build(ctx context.Context, kind Kind, limit int) (*Figure, error) {
	switch kind {
	case KindSalesTrend:
		return b.salesTrend(ctx)
	case KindTopProducts:
		return b.topProducts(ctx, clampLimit(limit, DefaultTopProductsLimit))
	case KindROAS:
		return b.roas(ctx, clampLimit(limit, DefaultROASLimit))
	case KindEligibility:
		return b.eligibility(ctx)
	case KindAdPerformance:
		return b.adPerformance(ctx)
	case KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown chart type %q", kind)
	}
}

func (b *Builder) salesTrend(ctx context.Context) (*Figure, error) {
	records, err := b.records(ctx, salesTrendSQL)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	x := make([]any, 0, len(records))
	y := make([]any, 0, len(records))
	for _, record := range records {
		x = append(x, query.String(record["date"]))
		y = append(y, query.Float(record["daily_sales"]))
	}
	showLegend := true
	layout := darkLayout("Daily Sales Trend", 400)
	layout.XAxis = axis("Date")
	layout.YAxis = axis("Sales ($)")
	layout.ShowLegend = &showLegend
	return &Figure{
		Data: []Trace{{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   "Daily Sales ($)",
			X:      x,
			Y:      y,
			Line:   &Line{Color: colorGreen, Width: 3},
			Marker: &Marker{Size: 8},
		}},
		Layout: layout,
	}, nil
}

func (b *Builder) topProducts(ctx context.Context, limit int) (*Figure, error) {
	records, err := b.records(ctx, fmt.Sprintf(topProductsSQL, limit))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	x := make([]any, 0, len(records))
	y := make([]any, 0, len(records))
	text := make([]string, 0, len(records))
	for _, record := range records {
		sales := query.Float(record["total_product_sales"])
		x = append(x, query.String(record["item_id"]))
		y = append(y, sales)
		text = append(text, formatRounded(sales))
	}
	layout := darkLayout(fmt.Sprintf("Top %d Products by Sales", limit), 400)
	layout.XAxis = axis("Product ID")
	layout.YAxis = axis("Total Sales ($)")
	return &Figure{
		Data: []Trace{{
			Type:         "bar",
			X:            x,
			Y:            y,
			Text:         text,
			TextPosition: "auto",
			Marker:       &Marker{Color: colorBlue},
		}},
		Layout: layout,
	}, nil
}

func (b *Builder) roas(ctx context.Context, limit int) (*Figure, error) {
	records, err := b.records(ctx, fmt.Sprintf(roasSQL, limit))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	x := make([]any, 0, len(records))
	y := make([]any, 0, len(records))
	text := make([]string, 0, len(records))
	colors := make([]string, 0, len(records))
	for _, record := range records {
		value := query.Float(record["roas"])
		x = append(x, query.String(record["item_id"]))
		y = append(y, value)
		text = append(text, formatRounded(value))
		colors = append(colors, ROASColor(value))
	}
	layout := darkLayout(fmt.Sprintf("Return on Ad Spend (RoAS) by Product - Top %d", limit), 400)
	layout.XAxis = axis("Product ID")
	layout.YAxis = axis("RoAS (Revenue/Ad Spend)")
	layout.Annotations = []Annotation{paperAnnotation("Green: Excellent (≥5x) | Yellow: Good (≥2x) | Red: Poor (<2x)")}
	return &Figure{
		Data: []Trace{{
			Type:         "bar",
			X:            x,
			Y:            y,
			Text:         text,
			TextPosition: "auto",
			Marker:       &Marker{Color: colors},
		}},
		Layout: layout,
	}, nil
}

// ROASColor is the traffic-light color of a RoAS value.
func ROASColor(roas float64) string {
	switch {
	case roas >= 5:
		return colorGreen
	case roas >= 2:
		return colorYellow
	default:
		return colorRed
	}
}

func (b *Builder) eligibility(ctx context.Context) (*Figure, error) {
	records, err := b.records(ctx, eligibilitySQL)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	labels := make([]string, 0, len(records))
	values := make([]any, 0, len(records))
	colors := make([]string, 0, len(records))
	for _, record := range records {
		if query.String(record["eligibility"]) == "TRUE" {
			labels = append(labels, "Eligible")
			colors = append(colors, colorGreen)
		} else {
			labels = append(labels, "Not Eligible")
			colors = append(colors, colorRed)
		}
		values = append(values, query.Int(record["count"]))
	}
	return &Figure{
		Data: []Trace{{
			Type:         "pie",
			Labels:       labels,
			Values:       values,
			TextInfo:     "label+percent+value",
			TextPosition: "auto",
			Marker:       &Marker{Colors: colors},
		}},
		Layout: darkLayout("Product Eligibility Distribution", 400),
	}, nil
}

func (b *Builder) adPerformance(ctx context.Context) (*Figure, error) {
	records, err := b.records(ctx, adPerformanceSQL)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	x := make([]any, 0, len(records))
	y := make([]any, 0, len(records))
	sizes := make([]any, 0, len(records))
	spend := make([]any, 0, len(records))
	text := make([]string, 0, len(records))
	for _, record := range records {
		totalSpend := query.Float(record["total_spend"])
		conversion := query.Float(record["conversion_rate"])
		x = append(x, query.Float(record["cpc"]))
		y = append(y, conversion)
		sizes = append(sizes, BubbleSize(totalSpend))
		spend = append(spend, totalSpend)
		text = append(text, query.String(record["item_id"]))
	}
	layout := darkLayout("Ad Performance: Cost Per Click vs Conversion Rate", 500)
	layout.XAxis = axis("Cost Per Click ($)")
	layout.YAxis = axis("Conversion Rate (%)")
	layout.Annotations = []Annotation{paperAnnotation("Bubble size = Ad Spend | Color = Conversion Rate")}
	return &Figure{
		Data: []Trace{{
			Type:         "scatter",
			Mode:         "markers",
			X:            x,
			Y:            y,
			Text:         text,
			TextPosition: "middle center",
			CustomData:   spend,
			HoverTemplate: "<b>Product %{text}</b><br>" +
				"CPC: $%{x:.2f}<br>" +
				"Conversion Rate: %{y:.1f}%<br>" +
				"Total Spend: $%{customdata:.0f}<br>" +
				"<extra></extra>",
			Marker: &Marker{
				Size:       sizes,
				Color:      y,
				ColorScale: "Viridis",
				ShowScale:  true,
				ColorBar:   &ColorBar{Title: Text{Text: "Conversion Rate %"}},
			},
		}},
		Layout: layout,
	}, nil
}

// BubbleSize maps total ad spend to a marker size between 5 and 30.
func BubbleSize(totalSpend float64) float64 {
	return math.Min(math.Max(totalSpend/10, 5), 30)
}

func (b *Builder) records(ctx context.Context, sqlText string) ([]query.Record, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	result, err := b.engine.Execute(ctx, query.Request{SQL: sqlText})
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func formatRounded(value float64) string {
	return fmt.Sprintf("%.2f", math.Round(value*100)/100)
}
