package adsightctl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	apiKey string
	body   string
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			apiKey: r.Header.Get("X-API-Key"),
			body:   string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestRunAskCommand(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"status":"success","response":"Total sales are 1090."}`)

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{
		"-base-url", srv.URL,
		"-api-key", "k1",
		"ask", "What", "is", "my", "total", "sales?",
	}, Options{Stdout: &stdout, Stderr: &stderr, Timeout: 2 * time.Second})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr.String())
	}
	if got.method != http.MethodPost || got.path != "/ask" || got.apiKey != "k1" {
		t.Fatalf("request = %+v", got)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body["question"] != "What is my total sales?" {
		t.Fatalf("question = %q", body["question"])
	}
	if !strings.Contains(stdout.String(), "Total sales are 1090.") {
		t.Fatalf("stdout = %s", stdout.String())
	}
}

func TestRunCommandsMapToRoutes(t *testing.T) {
	tests := []struct {
		args  []string
		path  string
		query string
	}{
		{args: []string{"health"}, path: "/health"},
		{args: []string{"samples"}, path: "/sample-questions"},
		{args: []string{"dashboard"}, path: "/dashboard"},
		{args: []string{"stats"}, path: "/stats"},
		{args: []string{"-limit", "5", "products"}, path: "/analytics/products", query: "limit=5"},
		{args: []string{"-limit", "3", "chart", "roas"}, path: "/visualizations/roas", query: "limit=3"},
		{args: []string{"history"}, path: "/history"},
		{args: []string{"history-get", "42"}, path: "/history/42"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			srv, got := newServer(t, http.StatusOK, `{"status":"success"}`)
			code := Run(context.Background(), append([]string{"-base-url", srv.URL}, tt.args...), Options{})
			if code != 0 {
				t.Fatalf("exit code = %d", code)
			}
			if got.method != http.MethodGet || got.path != tt.path || got.query != tt.query {
				t.Fatalf("request = %+v, want %s?%s", got, tt.path, tt.query)
			}
		})
	}
}

func TestRunReportsHTTPErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `{"error":"Query not found","status":"error"}`)
	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "history-get", "7"}, Options{Stderr: &stderr})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "http 404") {
		t.Fatalf("stderr = %s", stderr.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"bogus"},
		{"ask"},
		{"chart"},
		{"history-get", "abc"},
		{"-nope"},
	} {
		var stderr bytes.Buffer
		if code := Run(context.Background(), args, Options{Stderr: &stderr}); code != 2 {
			t.Fatalf("Run(%v) exit code = %d, want 2", args, code)
		}
	}
}

func TestRunConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	if code := Run(context.Background(), []string{"-base-url", baseURL, "health"}, Options{}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
