// server runs the economic insights HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit"
	audithandler "github.com/Gelzieny/remix-of-economic-insight/internal/audit/handler"
	auditrepo "github.com/Gelzieny/remix-of-economic-insight/internal/audit/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/cache"
	"github.com/Gelzieny/remix-of-economic-insight/internal/config"
	"github.com/Gelzieny/remix-of-economic-insight/internal/db"
	healthhandler "github.com/Gelzieny/remix-of-economic-insight/internal/health/handler"
	identityhandler "github.com/Gelzieny/remix-of-economic-insight/internal/identity/handler"
	identityrepo "github.com/Gelzieny/remix-of-economic-insight/internal/identity/repository"
	identityservice "github.com/Gelzieny/remix-of-economic-insight/internal/identity/service"
	indicatorhandler "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/handler"
	indicatorrepo "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	indicatorservice "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/service"
	insighthandler "github.com/Gelzieny/remix-of-economic-insight/internal/insight/handler"
	insightrepo "github.com/Gelzieny/remix-of-economic-insight/internal/insight/repository"
	insightservice "github.com/Gelzieny/remix-of-economic-insight/internal/insight/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/llm"
	"github.com/Gelzieny/remix-of-economic-insight/internal/logging"
	"github.com/Gelzieny/remix-of-economic-insight/internal/notify"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
	preferencehandler "github.com/Gelzieny/remix-of-economic-insight/internal/preference/handler"
	preferencerepo "github.com/Gelzieny/remix-of-economic-insight/internal/preference/repository"
	preferenceservice "github.com/Gelzieny/remix-of-economic-insight/internal/preference/service"
	reporthandler "github.com/Gelzieny/remix-of-economic-insight/internal/report/handler"
	reportservice "github.com/Gelzieny/remix-of-economic-insight/internal/report/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
	sessionrepo "github.com/Gelzieny/remix-of-economic-insight/internal/session/repository"
	subscriberhandler "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/handler"
	subscriberrepo "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/repository"
	subscriberservice "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
	otelsetup "github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/otel"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/producer"
	userrepo "github.com/Gelzieny/remix-of-economic-insight/internal/user/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()
	var otelLogs otellog.LoggerProvider
	if providers.Enabled {
		otelLogs = providers.LoggerProvider
	}
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, otelLogs)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	database, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()

	signer, pub, ephemeral, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.Env != "production")
	if err != nil {
		return fmt.Errorf("jwt keys: %w", err)
	}
	if ephemeral {
		logger.Warn("JWT keys not configured; using an ephemeral key, tokens will not survive a restart")
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	policy, err := engine.NewOPAEvaluator(ctx, "", logger)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	// Events go to Kafka for the delivery worker and mirror to OTel logs.
	kafka := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsTopic)
	events := telemetry.Multi{otelsetup.NewEventEmitter(providers.LoggerProvider)}
	if kafka != nil {
		events = append(events, kafka)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	auditLogs := auditrepo.NewPostgresRepository(database)
	audits := audit.NewLogger(auditLogs, interceptors.ClientIP, logger)
	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	readings := indicatorrepo.NewPostgresRepository(database)

	auth := identityservice.NewAuthService(
		users, sessions, identityrepo.NewPostgresRepository(database),
		security.NewHasher(cfg.BcryptCost), tokens,
		notify.New(cfg.MailWebhookURL, cfg.NotifyToken, logger), audits,
	).WithLogger(logger)
	indicators := indicatorservice.NewService(readings, policy).WithEvents(events, logger)
	insights := insightservice.NewService(insightrepo.NewPostgresRepository(database), indicators, policy, logger).WithEvents(events)

	store, closeStore := newCache(ctx, cfg.RedisURL, logger)
	defer closeStore()
	generator := insightservice.NewGenerator(
		newLLM(cfg, registry, logger), store, cfg.InsightTTL(),
		insightservice.NewUserLimiter(cfg.InsightRatePerMinute), logger,
	)
	reports := reportservice.NewService(readings, events, logger)
	subscriptions := subscriberservice.NewService(subscriberrepo.NewPostgresRepository(database), users)
	preferences := preferenceservice.NewService(preferencerepo.NewPostgresRepository(database))

	identity := identityhandler.NewHandler(auth)
	e, err := server.New(server.Deps{
		Tokens:         tokens,
		Sessions:       sessions,
		Audit:          audits,
		Events:         events,
		TracerProvider: providers.TracerProvider,
		Meter:          providers.MeterProvider.Meter("github.com/Gelzieny/remix-of-economic-insight"),
		Gatherer:       registry,
		Health:         healthhandler.NewHandler(database, policy),
		CORSOrigins:    cfg.CORSOriginsList(),
		Public: []server.PublicRoutes{
			identity,
			reporthandler.NewHandler(reports, cfg.ServiceKey, logger),
		},
		Protected: []server.ProtectedRoutes{
			identity,
			indicatorhandler.NewHandler(indicators),
			insighthandler.NewHandler(generator, insights, logger),
			subscriberhandler.NewHandler(subscriptions),
			preferencehandler.NewHandler(preferences),
			audithandler.NewHandler(auditLogs),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	// Let in-flight async emits finish before closing the emitters.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafka.Close(); err != nil {
		logger.Warn("kafka close", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
	return nil
}

// newLLM returns the instrumented insight model client, or nil when no API key is configured.
func newLLM(cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) llm.Client {
	client, err := llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
	})
	if err != nil {
		logger.Warn("AI insights disabled", zap.Error(err))
		return nil
	}
	logger.Info("AI insights enabled", zap.String("provider", cfg.LLMProvider), zap.String("model", client.Name()))
	return llm.Instrument(client, llm.NewMetrics(reg))
}

// newCache returns Redis when configured and reachable, else an in-process cache.
func newCache(ctx context.Context, redisURL string, logger *zap.Logger) (cache.Store, func()) {
	if redisURL == "" {
		return cache.NewMemoryStore(), func() {}
	}
	store, err := cache.Connect(ctx, redisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-process insight cache", zap.Error(err))
		return cache.NewMemoryStore(), func() {}
	}
	return store, func() { _ = store.Close() }
}
