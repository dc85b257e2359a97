package adsightctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("adsightctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:5000"), "adsight API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 60s)")
	limit := fs.Int("limit", 0, "row limit for products, chart and history commands")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	req, err := buildRequest(fs.Args(), *limit)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	endpoint := strings.TrimRight(*baseURL, "/") + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}
	code, responseBody, err := doRequest(ctx, client, req.method, endpoint, *apiKey, req.body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func buildRequest(args []string, limit int) (request, error) {
	command := strings.TrimSpace(args[0])
	rest := args[1:]

	withLimit := func() url.Values {
		if limit <= 0 {
			return nil
		}
		return url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	switch command {
	case "health":
		return request{method: http.MethodGet, path: "/health"}, nil
	case "samples":
		return request{method: http.MethodGet, path: "/sample-questions"}, nil
	case "ask":
		question := strings.TrimSpace(strings.Join(rest, " "))
		if question == "" {
			return request{}, fmt.Errorf("ask requires a question")
		}
		body, err := json.Marshal(map[string]string{"question": question})
		if err != nil {
			return request{}, err
		}
		return request{method: http.MethodPost, path: "/ask", body: body}, nil
	case "dashboard":
		return request{method: http.MethodGet, path: "/dashboard"}, nil
	case "stats":
		return request{method: http.MethodGet, path: "/stats"}, nil
	case "products":
		return request{method: http.MethodGet, path: "/analytics/products", query: withLimit()}, nil
	case "chart":
		if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
			return request{}, fmt.Errorf("chart requires exactly one chart type")
		}
		return request{method: http.MethodGet, path: "/visualizations/" + url.PathEscape(strings.TrimSpace(rest[0])), query: withLimit()}, nil
	case "history":
		return request{method: http.MethodGet, path: "/history", query: withLimit()}, nil
	case "history-get":
		if len(rest) != 1 {
			return request{}, fmt.Errorf("history-get requires exactly one id")
		}
		if _, err := strconv.ParseInt(rest[0], 10, 64); err != nil {
			return request{}, fmt.Errorf("history id must be an integer: %q", rest[0])
		}
		return request{method: http.MethodGet, path: "/history/" + rest[0]}, nil
	default:
		return request{}, fmt.Errorf("unknown command %q", command)
	}
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: adsightctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health              GET /health")
	_, _ = fmt.Fprintln(w, "  samples             GET /sample-questions")
	_, _ = fmt.Fprintln(w, "  ask <question...>   POST /ask")
	_, _ = fmt.Fprintln(w, "  dashboard           GET /dashboard")
	_, _ = fmt.Fprintln(w, "  products            GET /analytics/products")
	_, _ = fmt.Fprintln(w, "  stats               GET /stats")
	_, _ = fmt.Fprintln(w, "  chart <type>        GET /visualizations/<type>")
	_, _ = fmt.Fprintln(w, "  history             GET /history")
	_, _ = fmt.Fprintln(w, "  history-get <id>    GET /history/<id>")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
