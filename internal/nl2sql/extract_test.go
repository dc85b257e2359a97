package nl2sql

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced", in: "```sql\nSELECT SUM(total_sales) FROM total_sales;\n```", want: "SELECT SUM(total_sales) FROM total_sales;"},
		{name: "fenced without semicolon", in: "```sql\nSELECT 1\n```", want: "SELECT 1;"},
		{name: "bare fence", in: "```\nSELECT 2\n```\n", want: "SELECT 2;"},
		{name: "plain", in: "  SELECT 3  ", want: "SELECT 3;"},
		{name: "keeps single semicolon", in: "SELECT 4;", want: "SELECT 4;"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSQL(tc.in); got != tc.want {
				t.Fatalf("ExtractSQL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
