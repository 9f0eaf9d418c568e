// worker consumes domain events from Kafka, delivers generated reports to active subscribers
// through the report webhook and archives every event in Loki.
// Set KAFKA_BROKERS, EVENTS_KAFKA_TOPIC, KAFKA_GROUP_ID, DATABASE_URL and REPORT_WEBHOOK_URL; LOKI_URL is optional.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/config"
	"github.com/Gelzieny/remix-of-economic-insight/internal/db"
	"github.com/Gelzieny/remix-of-economic-insight/internal/delivery"
	"github.com/Gelzieny/remix-of-economic-insight/internal/logging"
	"github.com/Gelzieny/remix-of-economic-insight/internal/notify"
	subscriberrepo "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/loki"
	otelsetup "github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/otel"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/producer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName+"-worker", cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	var otelLogs otellog.LoggerProvider
	if providers.Enabled {
		otelLogs = providers.LoggerProvider
	}
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, otelLogs)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	database, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{MaxOpenConns: 4})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()

	var archiver delivery.Archiver
	if cfg.LokiURL != "" {
		archiver = loki.NewClient(cfg.LokiURL)
	}
	deliverer := delivery.NewDeliverer(
		subscriberrepo.NewPostgresRepository(database),
		notify.New(cfg.ReportWebhookURL, cfg.NotifyToken, logger),
		archiver,
		otelsetup.NewEventEmitter(providers.LoggerProvider),
		logger,
	)

	consumer := producer.NewKafkaConsumer(brokers, cfg.EventsTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	logger.Info("worker consuming",
		zap.String("topic", cfg.EventsTopic), zap.String("group", cfg.KafkaGroupID),
		zap.Bool("loki", archiver != nil))
	for {
		msg, err := consumer.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("kafka read error", zap.Error(err))
			continue
		}
		handleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := deliverer.Handle(handleCtx, msg); err != nil {
			logger.Error("delivery failed", zap.Error(err))
		}
		cancel()
	}

	logger.Info("worker stopped")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return providers.Shutdown(shutdownCtx)
}
