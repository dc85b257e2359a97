package charts

import (
	"fmt"
	"strings"

	"github.com/adsight/adsight/internal/query"
)

type Kind string

const (
	KindNone          Kind = ""
	KindSalesTrend    Kind = "sales_trend"
	KindTopProducts   Kind = "top_products"
	KindROAS          Kind = "roas"
	KindEligibility   Kind = "eligibility"
	KindAdPerformance Kind = "ad_performance"
)

var Kinds = []Kind{KindSalesTrend, KindTopProducts, KindROAS, KindEligibility, KindAdPerformance}

func ParseKind(name string) (Kind, error) {
	candidate := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, kind := range Kinds {
		if kind == candidate {
			return kind, nil
		}
	}
	return KindNone, fmt.Errorf("unknown chart type %q", name)
}

type keywordRule struct {
	kind     Kind
	keywords []string
}

// keywordRules is evaluated in order; the first rule with a matching keyword
// wins.
var keywordRules = []keywordRule{
	{kind: KindSalesTrend, keywords: []string{"sales trend", "daily sales", "sales over time"}},
	{kind: KindTopProducts, keywords: []string{"top products", "best selling", "highest sales"}},
	{kind: KindROAS, keywords: []string{"roas", "return on ad spend", "ad performance"}},
	{kind: KindEligibility, keywords: []string{"eligibility", "eligible products"}},
	{kind: KindAdPerformance, keywords: []string{"cpc", "cost per click", "conversion"}},
}

// Select picks the chart for a question and its result rows.
func Select(question string, records []query.Record) Kind {
	lowered := strings.ToLower(question)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.kind
			}
		}
	}

	if len(records) <= 1 {
		return KindNone
	}
	first := records[0]
	if _, ok := first["item_id"]; ok && hasSalesKey(first) {
		return KindTopProducts
	}
	if _, ok := first["date"]; ok {
		return KindSalesTrend
	}
	return KindNone
}

func hasSalesKey(record query.Record) bool {
	for key := range record {
		if strings.Contains(strings.ToLower(key), "sales") {
			return true
		}
	}
	return false
}
