package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/adsight/adsight/internal/query"
)

const (
	DefaultProductLimit = 20
	DefaultTrendDays    = 7
	maxLimit            = 100
)

type SalesMetrics struct {
	TotalRevenue           float64 `json:"total_revenue"`
	TotalUnits             int64   `json:"total_units"`
	ActiveProducts         int64   `json:"active_products"`
	AvgSalesPerTransaction float64 `json:"avg_sales_per_transaction"`
	ActiveDays             int64   `json:"active_days"`
}

type AdMetrics struct {
	TotalAdRevenue        float64 `json:"total_ad_revenue"`
	TotalAdSpend          float64 `json:"total_ad_spend"`
	TotalImpressions      int64   `json:"total_impressions"`
	TotalClicks           int64   `json:"total_clicks"`
	TotalAdUnits          int64   `json:"total_ad_units"`
	OverallROAS           float64 `json:"overall_roas"`
	AvgCPC                float64 `json:"avg_cpc"`
	OverallCTR            float64 `json:"overall_ctr"`
	OverallConversionRate float64 `json:"overall_conversion_rate"`
}

type EligibilityMetrics struct {
	EligibleProducts     int64   `json:"eligible_products"`
	TotalProductsChecked int64   `json:"total_products_checked"`
	EligibilityRate      float64 `json:"eligibility_rate"`
}

type DerivedMetrics struct {
	AdRevenuePercentage float64 `json:"ad_revenue_percentage"`
	RevenuePerProduct   float64 `json:"revenue_per_product"`
	AdSpendEfficiency   float64 `json:"ad_spend_efficiency"`
}

type BusinessSummary struct {
	SalesMetrics       SalesMetrics       `json:"sales_metrics"`
	AdMetrics          AdMetrics          `json:"ad_metrics"`
	EligibilityMetrics EligibilityMetrics `json:"eligibility_metrics"`
	// DerivedMetrics is only present when there is positive revenue.
	DerivedMetrics *DerivedMetrics `json:"derived_metrics,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

type ProductPerformance struct {
	ItemID           int64    `json:"item_id"`
	TotalRevenue     float64  `json:"total_revenue"`
	TotalUnits       int64    `json:"total_units"`
	AdRevenue        float64  `json:"ad_revenue"`
	AdSpend          float64  `json:"ad_spend"`
	Impressions      int64    `json:"impressions"`
	Clicks           int64    `json:"clicks"`
	AdUnits          int64    `json:"ad_units"`
	ROAS             float64  `json:"roas"`
	CPC              float64  `json:"cpc"`
	CTR              float64  `json:"ctr"`
	ConversionRate   float64  `json:"conversion_rate"`
	IsEligible       *string  `json:"is_eligible"`
	PerformanceScore int      `json:"performance_score"`
	Recommendations  []string `json:"recommendations"`
}

type DailySales struct {
	Date           string  `json:"date"`
	DailySales     float64 `json:"daily_sales"`
	DailyUnits     int64   `json:"daily_units"`
	ActiveProducts int64   `json:"active_products"`
}

type DailyAdPerformance struct {
	Date             string  `json:"date"`
	DailyAdSales     float64 `json:"daily_ad_sales"`
	DailyAdSpend     float64 `json:"daily_ad_spend"`
	DailyImpressions int64   `json:"daily_impressions"`
	DailyClicks      int64   `json:"daily_clicks"`
	DailyROAS        float64 `json:"daily_roas"`
}

type Trends struct {
	SalesTrend string `json:"sales_trend,omitempty"`
	ROASTrend  string `json:"roas_trend,omitempty"`
}

type TimeAnalysis struct {
	DailySales         []DailySales         `json:"daily_sales"`
	DailyAdPerformance []DailyAdPerformance `json:"daily_ad_performance"`
	Trends             Trends               `json:"trends"`
}

// Service computes the dashboard metrics with fixed queries.
type Service struct {
	engine query.Engine
	now    func() time.Time
}

func NewService(engine query.Engine) *Service {
	return &Service{engine: engine, now: time.Now}
}

func (s *Service) BusinessSummary(ctx context.Context) (BusinessSummary, error) {
	sales, err := s.firstRecord(ctx, salesMetricsSQL)
	if err != nil {
		return BusinessSummary{}, fmt.Errorf("sales metrics: %w", err)
	}
	ads, err := s.firstRecord(ctx, adMetricsSQL)
	if err != nil {
		return BusinessSummary{}, fmt.Errorf("ad metrics: %w", err)
	}
	eligibility, err := s.firstRecord(ctx, eligibilityMetricsSQL)
	if err != nil {
		return BusinessSummary{}, fmt.Errorf("eligibility metrics: %w", err)
	}

	summary := BusinessSummary{
		SalesMetrics: SalesMetrics{
			TotalRevenue:           query.Float(sales["total_revenue"]),
			TotalUnits:             query.Int(sales["total_units"]),
			ActiveProducts:         query.Int(sales["active_products"]),
			AvgSalesPerTransaction: query.Float(sales["avg_sales_per_transaction"]),
			ActiveDays:             query.Int(sales["active_days"]),
		},
		AdMetrics: AdMetrics{
			TotalAdRevenue:        query.Float(ads["total_ad_revenue"]),
			TotalAdSpend:          query.Float(ads["total_ad_spend"]),
			TotalImpressions:      query.Int(ads["total_impressions"]),
			TotalClicks:           query.Int(ads["total_clicks"]),
			TotalAdUnits:          query.Int(ads["total_ad_units"]),
			OverallROAS:           query.Float(ads["overall_roas"]),
			AvgCPC:                query.Float(ads["avg_cpc"]),
			OverallCTR:            query.Float(ads["overall_ctr"]),
			OverallConversionRate: query.Float(ads["overall_conversion_rate"]),
		},
		EligibilityMetrics: EligibilityMetrics{
			EligibleProducts:     query.Int(eligibility["eligible_products"]),
			TotalProductsChecked: query.Int(eligibility["total_products_checked"]),
			EligibilityRate:      query.Float(eligibility["eligibility_rate"]),
		},
		GeneratedAt: s.now().UTC(),
	}
	summary.DerivedMetrics = deriveMetrics(summary.SalesMetrics, summary.AdMetrics)
	return summary, nil
}

func deriveMetrics(sales SalesMetrics, ads AdMetrics) *DerivedMetrics {
	if sales.TotalRevenue <= 0 {
		return nil
	}
	products := sales.ActiveProducts
	if products < 1 {
		products = 1
	}
	return &DerivedMetrics{
		AdRevenuePercentage: ads.TotalAdRevenue / sales.TotalRevenue * 100,
		RevenuePerProduct:   sales.TotalRevenue / float64(products),
		AdSpendEfficiency:   ads.TotalAdRevenue - ads.TotalAdSpend,
	}
}

func (s *Service) ProductPerformance(ctx context.Context, limit int) ([]ProductPerformance, error) {
	limit = clampLimit(limit, DefaultProductLimit)
	records, err := s.records(ctx, fmt.Sprintf(productPerformanceSQL, limit))
	if err != nil {
		return nil, fmt.Errorf("product performance: %w", err)
	}

	products := make([]ProductPerformance, 0, len(records))
	for _, record := range records {
		product := ProductPerformance{
			ItemID:         query.Int(record["item_id"]),
			TotalRevenue:   query.Float(record["total_revenue"]),
			TotalUnits:     query.Int(record["total_units"]),
			AdRevenue:      query.Float(record["ad_revenue"]),
			AdSpend:        query.Float(record["ad_spend"]),
			Impressions:    query.Int(record["impressions"]),
			Clicks:         query.Int(record["clicks"]),
			AdUnits:        query.Int(record["ad_units"]),
			ROAS:           query.Float(record["roas"]),
			CPC:            query.Float(record["cpc"]),
			CTR:            query.Float(record["ctr"]),
			ConversionRate: query.Float(record["conversion_rate"]),
		}
		if value, ok := record["is_eligible"]; ok && value != nil {
			eligibility := query.String(value)
			product.IsEligible = &eligibility
		}
		product.PerformanceScore = PerformanceScore(product)
		product.Recommendations = Recommendations(product)
		products = append(products, product)
	}
	return products, nil
}

func (s *Service) TimeAnalysis(ctx context.Context, days int) (TimeAnalysis, error) {
	days = clampLimit(days, DefaultTrendDays)

	salesRecords, err := s.records(ctx, fmt.Sprintf(dailySalesSQL, days))
	if err != nil {
		return TimeAnalysis{}, fmt.Errorf("daily sales: %w", err)
	}
	adRecords, err := s.records(ctx, fmt.Sprintf(dailyAdSQL, days))
	if err != nil {
		return TimeAnalysis{}, fmt.Errorf("daily ad performance: %w", err)
	}

	analysis := TimeAnalysis{
		DailySales:         make([]DailySales, 0, len(salesRecords)),
		DailyAdPerformance: make([]DailyAdPerformance, 0, len(adRecords)),
	}
	for _, record := range salesRecords {
		analysis.DailySales = append(analysis.DailySales, DailySales{
			Date:           query.String(record["date"]),
			DailySales:     query.Float(record["daily_sales"]),
			DailyUnits:     query.Int(record["daily_units"]),
			ActiveProducts: query.Int(record["active_products"]),
		})
	}
	for _, record := range adRecords {
		analysis.DailyAdPerformance = append(analysis.DailyAdPerformance, DailyAdPerformance{
			Date:             query.String(record["date"]),
			DailyAdSales:     query.Float(record["daily_ad_sales"]),
			DailyAdSpend:     query.Float(record["daily_ad_spend"]),
			DailyImpressions: query.Int(record["daily_impressions"]),
			DailyClicks:      query.Int(record["daily_clicks"]),
			DailyROAS:        query.Float(record["daily_roas"]),
		})
	}
	analysis.Trends = CalculateTrends(analysis.DailySales, analysis.DailyAdPerformance)
	return analysis, nil
}

func (s *Service) records(ctx context.Context, sqlText string) ([]query.Record, error) {
	if s.engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	result, err := s.engine.Execute(ctx, query.Request{SQL: sqlText})
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

func (s *Service) firstRecord(ctx context.Context, sqlText string) (query.Record, error) {
	records, err := s.records(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return query.Record{}, nil
	}
	return records[0], nil
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
