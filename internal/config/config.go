package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const devSessionSecret = "dev-secret-key"

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Query         QueryConfig
	Data          DataConfig
	ObjectStore   ObjectStoreConfig
	AI            AIConfig
	Session       SessionConfig
	Analytics     AnalyticsConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type QueryConfig struct {
	ReadOnly bool
	Timeout  time.Duration
	MaxRows  int
}

type DataConfig struct {
	Source       string
	Dir          string
	ManifestFile string
	LoadOnStart  bool
}

type ObjectStoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
}

type AIConfig struct {
	BaseURL     string
	ChatPath    string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type SessionConfig struct {
	Secret string
}

type AnalyticsConfig struct {
	ProductLimit   int
	DashboardLimit int
	TrendDays      int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("ADSIGHT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid ADSIGHT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "ADSIGHT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("PORT"); ok && strings.TrimSpace(raw) != "" {
		cfg.HTTP.Address = ":" + strings.TrimSpace(raw)
	}
	if err := applyString(lookup, "ADSIGHT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DATABASE_URL", &cfg.Database.DSN); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_DATABASE_DSN", &cfg.Database.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_DATABASE_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_DATABASE_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_DATABASE_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ADSIGHT_QUERY_READ_ONLY", &cfg.Query.ReadOnly); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_QUERY_TIMEOUT", &cfg.Query.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_QUERY_MAX_ROWS", &cfg.Query.MaxRows); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_DATA_SOURCE", &cfg.Data.Source); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_DATA_DIR", &cfg.Data.Dir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_DATA_MANIFEST", &cfg.Data.ManifestFile); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ADSIGHT_DATA_LOAD_ON_START", &cfg.Data.LoadOnStart); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ADSIGHT_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_AI_CHAT_PATH", &cfg.AI.ChatPath); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GEMINI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "ADSIGHT_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ADSIGHT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SESSION_SECRET", &cfg.Session.Secret); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_SESSION_SECRET", &cfg.Session.Secret); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_ANALYTICS_PRODUCT_LIMIT", &cfg.Analytics.ProductLimit); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_ANALYTICS_DASHBOARD_LIMIT", &cfg.Analytics.DashboardLimit); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ADSIGHT_ANALYTICS_TREND_DAYS", &cfg.Analytics.TrendDays); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ADSIGHT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "ADSIGHT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ADSIGHT_AUTH_REQUIRED", &cfg.Auth.Required); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ADSIGHT_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Database.DSN == "" {
		return Config{}, fmt.Errorf("database dsn is required")
	}
	switch cfg.Data.Source {
	case "local", "s3":
	default:
		return Config{}, fmt.Errorf("invalid ADSIGHT_DATA_SOURCE: %q", cfg.Data.Source)
	}
	if cfg.Profile == ProfileProd && (cfg.Session.Secret == "" || cfg.Session.Secret == devSessionSecret) {
		return Config{}, fmt.Errorf("session secret must be set in prod profile")
	}
	if cfg.Profile == ProfileProd && !cfg.Auth.Required {
		return Config{}, fmt.Errorf("auth must be required in prod profile")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "adsight-api"},
		HTTP: HTTPConfig{
			Address:      ":5000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             "adsight.duckdb",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Query: QueryConfig{
			ReadOnly: true,
			Timeout:  30 * time.Second,
			MaxRows:  1000,
		},
		Data: DataConfig{
			Source:      "local",
			Dir:         "attached_assets",
			LoadOnStart: true,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:        "localhost:9000",
			Region:          "us-east-1",
			Bucket:          "adsight",
			AccessKeyID:     "minio",
			SecretAccessKey: "miniostorage",
			UseSSL:          false,
		},
		AI: AIConfig{
			BaseURL:     "https://generativelanguage.googleapis.com",
			ChatPath:    "/v1beta/openai/chat/completions",
			Model:       "gemini-2.5-flash",
			Temperature: 0.1,
			Timeout:     60 * time.Second,
		},
		Session: SessionConfig{
			Secret: devSessionSecret,
		},
		Analytics: AnalyticsConfig{
			ProductLimit:   20,
			DashboardLimit: 10,
			TrendDays:      7,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
		Auth: AuthConfig{
			Required:   false,
			StaticKeys: "",
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":15000"
		cfg.Database.DSN = ":memory:"
		cfg.Data.LoadOnStart = false
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
		cfg.ObjectStore.UseSSL = true
		cfg.Session.Secret = ""
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
