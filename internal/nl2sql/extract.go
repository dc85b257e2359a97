package nl2sql

import (
	"regexp"
	"strings"
)

var (
	sqlFencePattern  = regexp.MustCompile("```sql\\s*")
	bareFencePattern = regexp.MustCompile("```\\s*")
)

// ExtractSQL removes markdown code fences from a model reply and appends a
// semicolon when the statement does not already end with one.
func ExtractSQL(text string) string {
	text = sqlFencePattern.ReplaceAllString(text, "")
	text = bareFencePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	return text
}
