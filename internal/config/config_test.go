package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("adsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":5000" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
	if cfg.Database.DSN != "adsight.duckdb" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if !cfg.Query.ReadOnly {
		t.Fatal("Query.ReadOnly should default to true")
	}
	if cfg.Query.MaxRows != 1000 {
		t.Fatalf("Query.MaxRows = %d", cfg.Query.MaxRows)
	}
	if cfg.Data.Source != "local" || cfg.Data.Dir != "attached_assets" {
		t.Fatalf("Data = %#v", cfg.Data)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.ChatPath != "/v1beta/openai/chat/completions" {
		t.Fatalf("AI.ChatPath = %q", cfg.AI.ChatPath)
	}
	if cfg.Session.Secret != "dev-secret-key" {
		t.Fatalf("Session.Secret = %q", cfg.Session.Secret)
	}
	if cfg.Analytics.ProductLimit != 20 || cfg.Analytics.DashboardLimit != 10 || cfg.Analytics.TrendDays != 7 {
		t.Fatalf("Analytics = %#v", cfg.Analytics)
	}
}

func TestLoadTestProfileDefaults(t *testing.T) {
	cfg, err := Load("adsight-api", mapLookup(map[string]string{"ADSIGHT_PROFILE": "test"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Data.LoadOnStart {
		t.Fatal("Data.LoadOnStart should default to false in test")
	}
}

func TestLoadProdProfileRequiresSessionSecret(t *testing.T) {
	_, err := Load("adsight-api", mapLookup(map[string]string{"ADSIGHT_PROFILE": "prod"}))
	if err == nil {
		t.Fatal("expected error without session secret in prod")
	}

	_, err = Load("adsight-api", mapLookup(map[string]string{
		"ADSIGHT_PROFILE": "prod",
		"SESSION_SECRET":  "dev-secret-key",
	}))
	if err == nil {
		t.Fatal("expected error for the dev session secret in prod")
	}

	_, err = Load("adsight-api", mapLookup(map[string]string{
		"ADSIGHT_PROFILE":       "prod",
		"SESSION_SECRET":        "s3cr3t",
		"ADSIGHT_AUTH_REQUIRED": "false",
	}))
	if err == nil {
		t.Fatal("expected error when auth is disabled in prod")
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"ADSIGHT_PROFILE": "prod",
		"SESSION_SECRET":  "s3cr3t",
	})
	cfg, err := Load("adsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
}

func TestLoadAcceptsLegacyEnvironmentNames(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"DATABASE_URL":   "postgres://legacy",
		"GEMINI_API_KEY": "gemini-key",
		"SESSION_SECRET": "legacy-secret",
		"PORT":           "8081",
	})
	cfg, err := Load("adsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "postgres://legacy" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.AI.APIKey != "gemini-key" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.Session.Secret != "legacy-secret" {
		t.Fatalf("Session.Secret = %q", cfg.Session.Secret)
	}
	if cfg.HTTP.Address != ":8081" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
}

func TestLoadPrefixedKeysWinOverLegacyNames(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"DATABASE_URL":         "postgres://legacy",
		"ADSIGHT_DATABASE_DSN": "postgres://primary",
		"GEMINI_API_KEY":       "gemini-key",
		"ADSIGHT_AI_API_KEY":   "primary-key",
		"PORT":                 "8081",
		"ADSIGHT_HTTP_ADDR":    ":9090",
	})
	cfg, err := Load("adsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "postgres://primary" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.AI.APIKey != "primary-key" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.HTTP.Address != ":9090" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"ADSIGHT_PROFILE":                   "test",
		"ADSIGHT_HTTP_ADDR":                 ":9999",
		"ADSIGHT_HTTP_READ_TIMEOUT":         "2s",
		"ADSIGHT_HTTP_WRITE_TIMEOUT":        "3s",
		"ADSIGHT_LOG_LEVEL":                 "error",
		"ADSIGHT_AUTH_REQUIRED":             "true",
		"ADSIGHT_AUTH_STATIC_KEYS":          "k1:analyst",
		"ADSIGHT_DATABASE_DSN":              "postgres://example",
		"ADSIGHT_DATABASE_MAX_OPEN_CONNS":   "42",
		"ADSIGHT_DATABASE_MAX_IDLE_CONNS":   "17",
		"ADSIGHT_SERVICE_NAME":              "adsight-custom",
		"ADSIGHT_QUERY_READ_ONLY":           "false",
		"ADSIGHT_QUERY_TIMEOUT":             "4s",
		"ADSIGHT_QUERY_MAX_ROWS":            "250",
		"ADSIGHT_DATA_SOURCE":               "s3",
		"ADSIGHT_DATA_DIR":                  "datasets/v2",
		"ADSIGHT_DATA_MANIFEST":             "manifest.yaml",
		"ADSIGHT_OBJECTSTORE_ENDPOINT":      "s3.example.com",
		"ADSIGHT_OBJECTSTORE_BUCKET":        "adsight-prod",
		"ADSIGHT_OBJECTSTORE_REGION":        "us-west-2",
		"ADSIGHT_OBJECTSTORE_USE_SSL":       "true",
		"ADSIGHT_OBJECTSTORE_PREFIX":        "ads",
		"ADSIGHT_AI_BASE_URL":               "https://api.example.com",
		"ADSIGHT_AI_CHAT_PATH":              "/v1/chat/completions",
		"ADSIGHT_AI_MODEL":                  "gemini-custom",
		"ADSIGHT_AI_TEMPERATURE":            "0.3",
		"ADSIGHT_AI_TIMEOUT":                "21s",
		"ADSIGHT_ANALYTICS_PRODUCT_LIMIT":   "50",
		"ADSIGHT_ANALYTICS_DASHBOARD_LIMIT": "5",
		"ADSIGHT_ANALYTICS_TREND_DAYS":      "14",
	})
	cfg, err := Load("adsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "adsight-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 3*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Auth.Required || cfg.Auth.StaticKeys != "k1:analyst" {
		t.Fatalf("Auth = %#v", cfg.Auth)
	}
	if cfg.Database.DSN != "postgres://example" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxOpenConns != 42 || cfg.Database.MaxIdleConns != 17 {
		t.Fatalf("Database = %#v", cfg.Database)
	}
	if cfg.Query.ReadOnly {
		t.Fatal("Query.ReadOnly = true, want false")
	}
	if cfg.Query.Timeout != 4*time.Second || cfg.Query.MaxRows != 250 {
		t.Fatalf("Query = %#v", cfg.Query)
	}
	if cfg.Data.Source != "s3" || cfg.Data.Dir != "datasets/v2" || cfg.Data.ManifestFile != "manifest.yaml" {
		t.Fatalf("Data = %#v", cfg.Data)
	}
	if cfg.ObjectStore.Endpoint != "s3.example.com" || cfg.ObjectStore.Bucket != "adsight-prod" {
		t.Fatalf("ObjectStore = %#v", cfg.ObjectStore)
	}
	if !cfg.ObjectStore.UseSSL || cfg.ObjectStore.Prefix != "ads" {
		t.Fatalf("ObjectStore = %#v", cfg.ObjectStore)
	}
	if cfg.AI.BaseURL != "https://api.example.com" || cfg.AI.ChatPath != "/v1/chat/completions" {
		t.Fatalf("AI = %#v", cfg.AI)
	}
	if cfg.AI.Model != "gemini-custom" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("AI.Temperature = %f", cfg.AI.Temperature)
	}
	if cfg.AI.Timeout != 21*time.Second {
		t.Fatalf("AI.Timeout = %s", cfg.AI.Timeout)
	}
	if cfg.Analytics.ProductLimit != 50 || cfg.Analytics.DashboardLimit != 5 || cfg.Analytics.TrendDays != 14 {
		t.Fatalf("Analytics = %#v", cfg.Analytics)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"ADSIGHT_PROFILE": "oops"},
		{"ADSIGHT_HTTP_READ_TIMEOUT": "NaN"},
		{"ADSIGHT_DATABASE_MAX_OPEN_CONNS": "oops"},
		{"ADSIGHT_QUERY_MAX_ROWS": "oops"},
		{"ADSIGHT_QUERY_READ_ONLY": "maybe"},
		{"ADSIGHT_DATA_SOURCE": "ftp"},
		{"ADSIGHT_AI_TEMPERATURE": "bad"},
		{"ADSIGHT_AUTH_REQUIRED": "not-bool"},
		{"ADSIGHT_LOG_LEVEL": "verbose"},
		{"ADSIGHT_DATABASE_DSN": ""},
	}
	for _, env := range tests {
		_, err := Load("adsight-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
