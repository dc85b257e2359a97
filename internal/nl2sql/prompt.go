package nl2sql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adsight/adsight/internal/query"
)

const schemaContext = `Database Schema:

Table: eligibility
Columns: eligibility_datetime_utc (TEXT), item_id (BIGINT), eligibility (TEXT), message (TEXT)
Description: Contains product eligibility status for advertising

Table: ad_sales
Columns: date (TEXT), item_id (BIGINT), ad_sales (DOUBLE), impressions (BIGINT), ad_spend (DOUBLE), clicks (BIGINT), units_sold (BIGINT)
Description: Contains advertising performance metrics and sales data

Table: total_sales
Columns: date (TEXT), item_id (BIGINT), total_sales (DOUBLE), total_units_ordered (BIGINT)
Description: Contains total sales performance data

Key Business Metrics:
- RoAS (Return on Ad Spend) = ad_sales / ad_spend
- CPC (Cost Per Click) = ad_spend / clicks
- Conversion Rate = units_sold / clicks
- CTR (Click Through Rate) = clicks / impressions`

const generationRules = `Rules:
1. Generate ONLY the SQL query, no explanations
2. Use proper SQL syntax for %s
3. Handle date formats as TEXT
4. For RoAS calculations: ad_sales / ad_spend (handle division by zero)
5. For CPC calculations: ad_spend / clicks (handle division by zero)
6. Use appropriate JOINs when data from multiple tables is needed
7. Return meaningful column names
8. Limit results to reasonable numbers (use LIMIT when appropriate)
9. Handle NULL values appropriately
10. Use CASE statements for calculations that might involve division by zero

Common question patterns:
- "Total sales" = SUM(total_sales) from total_sales table
- "RoAS" = SUM(ad_sales) / SUM(ad_spend) from ad_sales table
- "Highest CPC" = MAX(ad_spend / clicks) from ad_sales table where clicks > 0
- "Eligible products" = COUNT(*) from eligibility where eligibility = 'TRUE'`

const interpretationGuidelines = `You are an expert e-commerce data analyst. Your job is to interpret SQL query results and provide clear, business-friendly explanations.

Guidelines:
1. Provide clear, concise answers
2. Include relevant numbers and percentages
3. Explain what the data means in business terms
4. If results are empty, explain what that means
5. For financial metrics, format numbers appropriately
6. Highlight key insights and actionable information
7. Be conversational but professional`

const noResultsMarker = "No results found"

// BuildGenerationPrompt renders the single prompt sent to the model for SQL
// generation. dialect names the SQL flavor of the analytics database.
func BuildGenerationPrompt(dialect, question string) string {
	if strings.TrimSpace(dialect) == "" {
		dialect = "DuckDB"
	}
	var b strings.Builder
	b.WriteString("You are an expert SQL query generator for an e-commerce analytics database.\n\n")
	b.WriteString(schemaContext)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, generationRules, dialect)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Generate a SQL query for this question: \"%s\"\n\n", strings.TrimSpace(question))
	b.WriteString("Return only the SQL query, nothing else.")
	return b.String()
}

func BuildInterpretationPrompt(question, sqlText string, result query.Result) string {
	var b strings.Builder
	b.WriteString(interpretationGuidelines)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Question: \"%s\"\n", question)
	fmt.Fprintf(&b, "SQL Query: %s\n", sqlText)
	fmt.Fprintf(&b, "Results: %s\n\n", FormatResults(result))
	b.WriteString("Please provide a clear, business-friendly interpretation of these results.")
	return b.String()
}

// FormatResults renders rows as an indented JSON array with keys in column
// order, or the no-results marker for an empty result.
func FormatResults(result query.Result) string {
	if len(result.Rows) == 0 {
		return noResultsMarker
	}
	var b bytes.Buffer
	b.WriteString("[\n")
	for rowIndex, row := range result.Rows {
		b.WriteString("  {\n")
		for i, column := range result.Columns {
			var value any
			if i < len(row) {
				value = row[i]
			}
			key, _ := json.Marshal(column)
			encoded, err := json.Marshal(value)
			if err != nil {
				encoded, _ = json.Marshal(fmt.Sprint(value))
			}
			b.WriteString("    ")
			b.Write(key)
			b.WriteString(": ")
			b.Write(encoded)
			if i < len(result.Columns)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("  }")
		if rowIndex < len(result.Rows)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]")
	return b.String()
}
