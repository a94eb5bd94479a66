package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	cli "github.com/schemapilot/schemapilot/internal/cli/schemapilot"
	"github.com/schemapilot/schemapilot/internal/config"
	"github.com/schemapilot/schemapilot/internal/extract"
	hiveextract "github.com/schemapilot/schemapilot/internal/extract/hive"
	pgextract "github.com/schemapilot/schemapilot/internal/extract/postgres"
	"github.com/schemapilot/schemapilot/internal/nl2sql"
	"github.com/schemapilot/schemapilot/internal/observability"
	"github.com/schemapilot/schemapilot/internal/pipeline"
	"github.com/schemapilot/schemapilot/internal/store"
	s3store "github.com/schemapilot/schemapilot/internal/store/s3"
)

func main() {
	// Local .env files are a convenience for interactive use; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("schemapilot")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor, err := openExtractor(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to backend", slog.Any("error", err))
		os.Exit(1)
	}

	artifacts, err := store.New(cfg.Artifact.Dir)
	if err != nil {
		logger.Error("failed to initialize artifact store", slog.Any("error", err))
		os.Exit(1)
	}

	var publisher store.ObjectStore
	if cfg.ObjectStore.PublishEnabled {
		s3, err := s3store.New(ctx, s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		publisher = s3
	}

	// Without an API key the generation stage is simply disabled; extraction
	// and persistence run either way.
	var generator nl2sql.Generator
	if cfg.AI.APIKey != "" {
		openai, err := nl2sql.NewOpenAIGenerator(nl2sql.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize generation client", slog.Any("error", err))
			os.Exit(1)
		}
		generator = openai
	} else {
		logger.Info("no generation api key configured, generation disabled")
	}

	svc := &pipeline.Service{
		Extractor: extractor,
		Store:     artifacts,
		Publisher: publisher,
		Generator: generator,
		Logger:    logger,
	}

	code := cli.Run(ctx, os.Args[1:], cli.Options{
		Pipeline: svc,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})

	// A failed push never changes the exit code; the run itself already
	// succeeded or failed on its own terms.
	if cfg.Observability.MetricsPushURL != "" {
		if err := observability.PushMetrics(cfg.Observability.MetricsPushURL, cfg.Service.Name); err != nil {
			logger.Warn("metrics push failed", slog.Any("error", err))
		}
	}

	os.Exit(code)
}

func openExtractor(ctx context.Context, cfg config.Config, logger *slog.Logger) (extract.Extractor, error) {
	switch cfg.Backend {
	case config.BackendHive:
		db, err := hiveextract.Open(ctx, hiveextract.DBConfig{DSN: cfg.Hive.DSN})
		if err != nil {
			return nil, err
		}
		return hiveextract.NewExtractor(db, cfg.Database, logger), nil
	default:
		db, err := pgextract.Open(ctx, pgextract.DBConfig{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		return pgextract.NewExtractor(db, cfg.Database, cfg.Postgres.Schema, logger), nil
	}
}
