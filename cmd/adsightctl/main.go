package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adsight/adsight/internal/cli/adsightctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("ADSIGHT_CLI_TIMEOUT")), 60*time.Second)
	options := adsightctl.Options{
		BaseURL: envOr("ADSIGHT_API_URL", "http://localhost:5000"),
		APIKey:  strings.TrimSpace(os.Getenv("ADSIGHT_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	code := adsightctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid ADSIGHT_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
