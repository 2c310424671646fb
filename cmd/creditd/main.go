package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/infrastructure/cache"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/kafka"
	"github.com/bibbank/creditrisk/internal/infrastructure/metrics"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
	pgRepo "github.com/bibbank/creditrisk/internal/infrastructure/postgres"
	"github.com/bibbank/creditrisk/internal/infrastructure/postgres/migrations"
	grpcPresentation "github.com/bibbank/creditrisk/internal/presentation/grpc"
	"github.com/bibbank/creditrisk/internal/presentation/rest"
	"github.com/bibbank/creditrisk/pkg/auth"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
	"github.com/bibbank/creditrisk/pkg/observability"
	pkgpostgres "github.com/bibbank/creditrisk/pkg/postgres"
)

const meterName = "github.com/bibbank/creditrisk"

func main() {
	if err := run(); err != nil {
		slog.Error("credit-service exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})
	logger.Info("starting credit-service",
		"environment", cfg.Environment,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"estimator_mode", cfg.Estimator.Mode,
	)

	// --- Observability ------------------------------------------------------
	tracerProvider, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without export", "error", err)
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	meter := meterProvider.Meter(meterName)

	// --- Scoring engine -----------------------------------------------------
	policy, err := config.LoadPolicy(cfg.PolicyFile, cfg.Estimator.Timeout)
	if err != nil {
		return fmt.Errorf("loading engine policy: %w", err)
	}
	if cfg.Estimator.Timeout <= 0 {
		cfg.Estimator.Timeout = policy.EstimatorTimeout
	}

	baseEstimator, err := ml.NewEstimator(cfg.Estimator, logger)
	if err != nil {
		return fmt.Errorf("building probability estimator: %w", err)
	}
	estimator, err := ml.NewInstrumentedEstimator(baseEstimator, meter)
	if err != nil {
		return fmt.Errorf("instrumenting probability estimator: %w", err)
	}

	engine, err := service.NewFusionEngine(policy, estimator, logger)
	if err != nil {
		return fmt.Errorf("building fusion engine: %w", err)
	}
	logger.Info("engine policy loaded",
		"policy_file", cfg.PolicyFile,
		"worst_case_adjustment_pct", policy.WorstCaseAdjustmentPct(),
		"model_auc", estimator.ModelAUC(),
	)

	// --- Database -----------------------------------------------------------
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := cfg.DB.Postgres()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), migrations.FS, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// --- Messaging and cache ------------------------------------------------
	producer, err := pkgkafka.NewProducer(cfg.Kafka.Client())
	if err != nil {
		return fmt.Errorf("creating kafka producer: %w", err)
	}
	defer producer.Close() //nolint:errcheck // closing on shutdown
	publisher := kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close() //nolint:errcheck // closing on shutdown
	assessmentCache := cache.NewRedisAssessmentCache(redisClient, cfg.Redis.TTL)

	assessmentMetrics, err := metrics.NewAssessmentMetrics(meter)
	if err != nil {
		return fmt.Errorf("creating assessment metrics: %w", err)
	}

	// --- Use cases ----------------------------------------------------------
	repo := pgRepo.NewCreditAssessmentRepository(pool)
	assessUC := usecase.NewAssessCreditUseCase(engine, repo, publisher, assessmentCache, assessmentMetrics, logger)
	getUC := usecase.NewGetAssessmentUseCase(repo, assessmentCache, logger)
	listUC := usecase.NewListAssessmentsUseCase(repo)

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:       cfg.Auth.JWTSecret,
		PublicKeyPEM: cfg.Auth.JWTPublicKey,
		Issuer:       cfg.Auth.JWTIssuer,
		Audience:     cfg.Auth.JWTAudience,
	})
	if err != nil {
		return fmt.Errorf("initializing JWT service: %w", err)
	}

	// --- gRPC server --------------------------------------------------------
	grpcHandler := grpcPresentation.NewCreditServiceHandler(assessUC, getUC, listUC, logger)
	grpcServer, err := grpcPresentation.NewServer(grpcHandler, jwtSvc, grpcPresentation.ServerOptions{
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// --- HTTP server --------------------------------------------------------
	checks := map[string]rest.ReadinessCheck{
		"database": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"estimator": func(ctx context.Context) error {
			return estimator.Ready(ctx)
		},
	}
	router := rest.NewRouter(rest.RouterConfig{
		Health:      rest.NewHealthHandler(cfg.ServiceName, checks, logger),
		Assessments: rest.NewAssessmentHandler(assessUC, getUC, listUC, logger),
		Metrics:     metricsHandler,
		JWT:         jwtSvc,
		Limiter:     rest.NewLimiter(cfg.HTTPRateLimitRPS, cfg.HTTPRateBurst),
		Logger:      logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Run ----------------------------------------------------------------
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.ListenAndServe(cfg.GRPCAddr()); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("credit-service stopped")
	return nil
}
