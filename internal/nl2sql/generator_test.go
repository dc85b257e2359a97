package nl2sql

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/adsight/adsight/internal/query"
)

type fakeChatClient struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeChatClient) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeChatClient) Model() string { return "fake-model" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGeneratorTranslateExtractsSQL(t *testing.T) {
	client := &fakeChatClient{reply: "```sql\nSELECT SUM(total_sales) AS total FROM total_sales\n```"}
	generator := NewGenerator(client, "DuckDB", discardLogger())

	result, err := generator.Translate(context.Background(), "What is my total sales?")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != "SELECT SUM(total_sales) AS total FROM total_sales;" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if result.Model != "fake-model" {
		t.Fatalf("Model = %q", result.Model)
	}
	if len(client.prompts) != 1 {
		t.Fatalf("prompts = %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	for _, snippet := range []string{
		"Table: eligibility",
		"Table: ad_sales",
		"Table: total_sales",
		"Use proper SQL syntax for DuckDB",
		`"Eligible products" = COUNT(*) from eligibility where eligibility = 'TRUE'`,
		`Generate a SQL query for this question: "What is my total sales?"`,
	} {
		if !strings.Contains(prompt, snippet) {
			t.Fatalf("prompt missing %q", snippet)
		}
	}
}

func TestGeneratorTranslateEmptyReply(t *testing.T) {
	generator := NewGenerator(&fakeChatClient{reply: "  \n"}, "DuckDB", discardLogger())
	_, err := generator.Translate(context.Background(), "q")
	if !errors.Is(err, ErrEmptySQL) {
		t.Fatalf("Translate() error = %v, want ErrEmptySQL", err)
	}

	generator = NewGenerator(&fakeChatClient{reply: "```sql\n```"}, "DuckDB", discardLogger())
	_, err = generator.Translate(context.Background(), "q")
	if !errors.Is(err, ErrEmptySQL) {
		t.Fatalf("Translate() fence-only error = %v, want ErrEmptySQL", err)
	}
}

func TestGeneratorTranslateModelError(t *testing.T) {
	generator := NewGenerator(&fakeChatClient{err: errors.New("quota exceeded")}, "PostgreSQL", discardLogger())
	_, err := generator.Translate(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Translate() error = %v", err)
	}
}

func TestInterpreterReturnsReply(t *testing.T) {
	client := &fakeChatClient{reply: "Your total sales are $1,234."}
	interpreter := NewInterpreter(client, discardLogger())

	result := query.Result{Columns: []string{"total"}, Rows: [][]any{{1234.0}}}
	got := interpreter.Interpret(context.Background(), "What is my total sales?", "SELECT 1;", result)
	if got != "Your total sales are $1,234." {
		t.Fatalf("Interpret() = %q", got)
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, `"total": 1234`) || !strings.Contains(prompt, "SQL Query: SELECT 1;") {
		t.Fatalf("prompt = %s", prompt)
	}
}

func TestInterpreterFallbacks(t *testing.T) {
	interpreter := NewInterpreter(&fakeChatClient{reply: ""}, discardLogger())
	if got := interpreter.Interpret(context.Background(), "q", "SELECT 1;", query.Result{}); got != "Unable to generate response" {
		t.Fatalf("Interpret(empty) = %q", got)
	}

	interpreter = NewInterpreter(&fakeChatClient{err: errors.New("timeout")}, discardLogger())
	if got := interpreter.Interpret(context.Background(), "q", "SELECT 1;", query.Result{}); got != "Error interpreting results: timeout" {
		t.Fatalf("Interpret(error) = %q", got)
	}
}

func TestFormatResults(t *testing.T) {
	if got := FormatResults(query.Result{Columns: []string{"a"}}); got != "No results found" {
		t.Fatalf("FormatResults(empty) = %q", got)
	}

	got := FormatResults(query.Result{
		Columns: []string{"item_id", "roas", "eligibility"},
		Rows:    [][]any{{int64(7), 2.5, "TRUE"}, {int64(8), nil, "FALSE"}},
	})
	want := "[\n" +
		"  {\n    \"item_id\": 7,\n    \"roas\": 2.5,\n    \"eligibility\": \"TRUE\"\n  },\n" +
		"  {\n    \"item_id\": 8,\n    \"roas\": null,\n    \"eligibility\": \"FALSE\"\n  }\n" +
		"]"
	if got != want {
		t.Fatalf("FormatResults() =\n%s\nwant\n%s", got, want)
	}
}
