package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adsight/adsight/internal/analytics"
	"github.com/adsight/adsight/internal/api"
	"github.com/adsight/adsight/internal/api/uistatic"
	"github.com/adsight/adsight/internal/assistant"
	"github.com/adsight/adsight/internal/auth"
	"github.com/adsight/adsight/internal/charts"
	"github.com/adsight/adsight/internal/config"
	"github.com/adsight/adsight/internal/history/sqlstore"
	"github.com/adsight/adsight/internal/loader"
	"github.com/adsight/adsight/internal/migrations"
	"github.com/adsight/adsight/internal/nl2sql"
	"github.com/adsight/adsight/internal/observability"
	"github.com/adsight/adsight/internal/query/sqldb"
	"github.com/adsight/adsight/internal/storage"
	"github.com/adsight/adsight/internal/storage/local"
	s3store "github.com/adsight/adsight/internal/storage/s3"
	"github.com/adsight/adsight/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg, err := config.LoadFromEnv("adsight-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, dialect, err := store.Open(context.Background(), store.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if _, err := migrations.NewRunner().Up(context.Background(), db, 0); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Data.LoadOnStart {
		if err := loadDatasets(context.Background(), cfg, db, dialect, logger); err != nil {
			logger.Error("failed to load datasets", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if cfg.Query.ReadOnly {
		if err := store.DisableExternalAccess(context.Background(), db, dialect); err != nil {
			logger.Error("failed to lock down database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	executor := sqldb.NewExecutor(db, sqldb.Options{
		ReadOnly:   cfg.Query.ReadOnly,
		ReadOnlyTx: cfg.Query.ReadOnly && dialect == store.DialectPostgres,
		Timeout:    cfg.Query.Timeout,
		MaxRows:    cfg.Query.MaxRows,
	})
	chartBuilder := charts.NewBuilder(executor)
	historyRepo := sqlstore.NewRepository(db)

	deps := api.Dependencies{
		Logger:            logger,
		DatabasePing:      db.PingContext,
		Readiness:         api.CombineReadinessChecks(api.CheckDatabase(db.PingContext), api.CheckAIConfig(cfg)),
		DependencyTimeout: time.Second,
		AIConfigured:      cfg.AI.APIKey != "",
		Analytics:         analytics.NewService(executor),
		Charts:            chartBuilder,
		History:           historyRepo,
		UI:                uistatic.Handler(),
	}

	if cfg.AI.APIKey != "" {
		client, err := nl2sql.NewOpenAIClient(nl2sql.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			ChatPath:    cfg.AI.ChatPath,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize model client", slog.Any("error", err))
			os.Exit(1)
		}
		assistantService, err := assistant.New(assistant.Config{
			Translator:  nl2sql.NewGenerator(client, string(dialect), logger),
			Interpreter: nl2sql.NewInterpreter(client, logger),
			Engine:      executor,
			Charts:      chartBuilder,
			History:     historyRepo,
			Logger:      logger,
			MaxRows:     cfg.Query.MaxRows,
		})
		if err != nil {
			logger.Error("failed to initialize assistant", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Assistant = assistantService
	} else {
		logger.Warn("no model api key configured; /ask is disabled")
	}

	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Session.Secret, cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address), slog.String("dialect", string(dialect)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func loadDatasets(ctx context.Context, cfg config.Config, db *sql.DB, dialect store.Dialect, logger *slog.Logger) error {
	objectStore, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	manifest := loader.DefaultManifest()
	if cfg.Data.ManifestFile != "" {
		manifest, err = loader.LoadManifest(cfg.Data.ManifestFile)
		if err != nil {
			return err
		}
	}
	l, err := loader.New(loader.Config{
		Store:    objectStore,
		DB:       db,
		Dialect:  dialect,
		Manifest: manifest,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	summary, err := l.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("datasets loaded",
		slog.String("load_run_id", summary.RunID),
		slog.Int("tables", len(summary.Tables)),
		slog.Duration("duration", summary.Duration),
	)
	return nil
}

func openObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	if cfg.Data.Source == "s3" {
		objectStore, err := s3store.New(ctx, s3store.Config{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Prefix:          cfg.ObjectStore.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 object store: %w", err)
		}
		return objectStore, nil
	}
	objectStore, err := local.New(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open local object store: %w", err)
	}
	return objectStore, nil
}
