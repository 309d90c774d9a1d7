// Command etl ingests a DWD 10-minute air temperature archive directory,
// normalizes it into canonical records, and persists the result to the
// configured sink (Kafka or Postgres).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/dwd-archive-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dwd-archive-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-archive-etl/internal/adapter/postgres"
	"github.com/couchcryptid/dwd-archive-etl/internal/config"
	"github.com/couchcryptid/dwd-archive-etl/internal/observability"
	"github.com/couchcryptid/dwd-archive-etl/internal/parse"
	"github.com/couchcryptid/dwd-archive-etl/internal/pipeline"
)

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loader := parse.NewArchiveLoader(cfg.DataDir)
	lookup, err := loader.StationIndex()
	if err != nil {
		logger.Error("failed to load station index", "error", err)
		os.Exit(1)
	}

	var sink pipeline.Sink
	var closeSink func() error
	switch cfg.Sink {
	case config.SinkKafka:
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, logger)
		sink = writer
		closeSink = writer.Close
		logger.Info("kafka sink configured", "brokers", cfg.KafkaBrokers, "topic_prefix", cfg.KafkaTopicPrefix)
	case config.SinkPostgres:
		store, err := postgres.Open(cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		sink = store
		closeSink = store.Close
		logger.Info("postgres sink configured")
	}

	p := pipeline.New(loader, lookup, sink, logger, metrics)
	runner := pipeline.NewRunner(p, cfg.Workers, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	stations, err := loader.Stations()
	if err != nil {
		logger.Error("failed to discover stations", "error", err)
		os.Exit(1)
	}
	logger.Info("starting ingestion", "stations", len(stations), "workers", cfg.Workers)

	report := runner.Run(ctx, stations)
	stop()

	logger.Info("ingestion finished",
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failures))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := closeSink(); err != nil {
		logger.Error("sink close error", "error", err)
	}

	if report.Failed() {
		os.Exit(1)
	}
}
