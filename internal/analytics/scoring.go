package analytics

import (
	"fmt"
	"math"
)

const maxRecommendations = 3

// PerformanceScore rates a product from 0 to 100: revenue up to 40 points,
// RoAS up to 30, conversion rate up to 20 and eligibility 10.
func PerformanceScore(p ProductPerformance) int {
	score := 0

	switch {
	case p.TotalRevenue > 10000:
		score += 40
	case p.TotalRevenue > 5000:
		score += 30
	case p.TotalRevenue > 1000:
		score += 20
	case p.TotalRevenue > 0:
		score += 10
	}

	switch {
	case p.ROAS > 10:
		score += 30
	case p.ROAS > 5:
		score += 25
	case p.ROAS > 3:
		score += 20
	case p.ROAS > 2:
		score += 15
	case p.ROAS > 1:
		score += 10
	}

	switch {
	case p.ConversionRate > 10:
		score += 20
	case p.ConversionRate > 5:
		score += 15
	case p.ConversionRate > 2:
		score += 10
	case p.ConversionRate > 1:
		score += 5
	}

	if isEligible(p) {
		score += 10
	}

	if score > 100 {
		return 100
	}
	return score
}

// Recommendations lists at most three actions for a product, in the order
// RoAS, CPC, conversion rate, CTR, eligibility.
func Recommendations(p ProductPerformance) []string {
	out := make([]string, 0, maxRecommendations)

	if p.ROAS < 2 {
		out = append(out, "⚠️ Low RoAS: Consider optimizing ad targeting or reducing ad spend")
	} else if p.ROAS > 10 {
		out = append(out, "🚀 Excellent RoAS: Consider increasing ad budget to scale")
	}

	if p.CPC > 5 {
		out = append(out, "💰 High CPC: Review keyword bidding strategy and ad relevance")
	} else if p.CPC < 0.5 {
		out = append(out, "💡 Low CPC: Opportunity to increase bids for better visibility")
	}

	if p.ConversionRate < 1 {
		out = append(out, "📈 Low conversion rate: Optimize product page and ad copy")
	} else if p.ConversionRate > 10 {
		out = append(out, "✅ Excellent conversion rate: This product converts very well")
	}

	if p.CTR < 1 {
		out = append(out, "👁️ Low CTR: Improve ad creative and targeting")
	} else if p.CTR > 5 {
		out = append(out, "🎯 Great CTR: Ad creative is engaging audiences well")
	}

	if !isEligible(p) {
		out = append(out, "❌ Not eligible for ads: Review eligibility requirements")
	}

	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

func isEligible(p ProductPerformance) bool {
	return p.IsEligible != nil && *p.IsEligible == "TRUE"
}

// CalculateTrends compares the two most recent days; both inputs are ordered
// newest first. A trend is omitted when the earlier day has no positive value.
func CalculateTrends(sales []DailySales, ads []DailyAdPerformance) Trends {
	var trends Trends

	if len(sales) >= 2 && sales[1].DailySales > 0 {
		change := (sales[0].DailySales - sales[1].DailySales) / sales[1].DailySales * 100
		switch {
		case change > 10:
			trends.SalesTrend = fmt.Sprintf("📈 Sales up %.1f%%", change)
		case change < -10:
			trends.SalesTrend = fmt.Sprintf("📉 Sales down %.1f%%", math.Abs(change))
		default:
			trends.SalesTrend = "➡️ Sales stable"
		}
	}

	if len(ads) >= 2 && ads[1].DailyROAS > 0 {
		change := (ads[0].DailyROAS - ads[1].DailyROAS) / ads[1].DailyROAS * 100
		switch {
		case change > 10:
			trends.ROASTrend = fmt.Sprintf("📈 RoAS improving %.1f%%", change)
		case change < -10:
			trends.ROASTrend = fmt.Sprintf("📉 RoAS declining %.1f%%", math.Abs(change))
		default:
			trends.ROASTrend = "➡️ RoAS stable"
		}
	}

	return trends
}
