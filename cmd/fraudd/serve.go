package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/internal/domain/service"
	"github.com/bibbank/frauddetect/internal/infrastructure/history"
	"github.com/bibbank/frauddetect/internal/infrastructure/messaging"
	"github.com/bibbank/frauddetect/internal/infrastructure/ml"
	pgrepo "github.com/bibbank/frauddetect/internal/infrastructure/postgres"
	redisinfra "github.com/bibbank/frauddetect/internal/infrastructure/redis"
	grpcpresentation "github.com/bibbank/frauddetect/internal/presentation/grpc"
	"github.com/bibbank/frauddetect/internal/presentation/rest"
	"github.com/bibbank/frauddetect/pkg/auth"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
	"github.com/bibbank/frauddetect/pkg/observability"
	pg "github.com/bibbank/frauddetect/pkg/postgres"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("http-port", "8080", "REST listen port")
	cmd.Flags().String("grpc-port", "9090", "gRPC listen port")
	cmd.Flags().Bool("migrate", true, "apply pending migrations on start")
	_ = a.v.BindPFlag("http.port", cmd.Flags().Lookup("http-port"))
	_ = a.v.BindPFlag("grpc.port", cmd.Flags().Lookup("grpc-port"))
	_ = a.v.BindPFlag("database.migrate", cmd.Flags().Lookup("migrate"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("starting fraudd",
		"http_port", cfg.HTTP.Port,
		"grpc_port", cfg.GRPC.Port,
		"environment", cfg.Env,
	)

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()
	meter := meterProvider.Meter(serviceName)

	if cfg.Database.Migrate {
		if err := pg.RunMigrationsFS(cfg.Database.URL, pgrepo.Migrations, pgrepo.MigrationsDir); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	pool, err := pg.NewPool(ctx, pg.Config{
		URL:             cfg.Database.URL,
		ApplicationName: serviceName,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	checks := map[string]rest.CheckFunc{
		"database": func(ctx context.Context) error { return pg.Ping(ctx, pool) },
	}

	// Infrastructure adapters.
	transactions := pgrepo.NewTransactionRepository(pool)
	notifications := pgrepo.NewNotificationRepository(pool)
	statistics := pgrepo.NewStatisticsRepository(pool)

	scorer, err := a.newScorer(meter)
	if err != nil {
		return err
	}

	var store port.HistoryStore = history.NewMemoryStore(cfg.Redis.HistorySize)
	if cfg.Redis.Addr != "" {
		client, err := a.newRedisClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		store = redisinfra.NewHistoryStore(client, cfg.Redis.HistoryKey, cfg.Redis.HistorySize)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	detect := usecase.NewDetectFraud(
		service.NewValidator(), service.NewAssessor(), scorer,
		transactions, notifications, logger,
	).WithHistory(store).WithScorerTimeout(cfg.Scorer.Timeout)

	if kcfg := cfg.KafkaClient(); kcfg.Enabled() {
		producer, err := pkgkafka.NewProducer(kcfg)
		if err != nil {
			return err
		}
		defer producer.Close()
		detect.WithPublisher(messaging.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger))
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}

	getTransaction := usecase.NewGetTransaction(transactions)
	listNotifications := usecase.NewListNotifications(notifications)
	markRead := usecase.NewMarkNotificationRead(notifications)

	jwtService, err := a.newJWTService()
	if err != nil {
		return err
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewFraudServiceHandler(detect, getTransaction, listNotifications, markRead, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), logger, grpcpresentation.ServerOptions{
		JWT:        jwtService,
		TLSCert:    cfg.GRPC.TLSCert,
		TLSKey:     cfg.GRPC.TLSKey,
		Reflection: cfg.GRPC.Reflection,
	})
	if err != nil {
		return err
	}

	// HTTP server.
	handler := rest.NewHandler(rest.UseCases{
		DetectFraud:       detect,
		GetTransaction:    getTransaction,
		ListTransactions:  usecase.NewListTransactions(transactions),
		ListNotifications: listNotifications,
		MarkRead:          markRead,
		Dashboard:         usecase.NewGetDashboard(transactions, notifications, statistics),
		Timeline:          usecase.NewGetFraudTimeline(statistics),
		History:           usecase.NewFraudHistory(store),
	}, logger)
	router, err := rest.NewRouter(handler, rest.NewHealthHandler(logger, checks), logger, rest.RouterConfig{
		Metrics: metricsHandler,
		Meter:   meter,
		JWT:     jwtService,
	})
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down fraudd")
		grpcServer.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("fraudd stopped")
	return err
}

func (a *app) newScorer(meter metric.Meter) (port.Scorer, error) {
	proc, err := ml.NewProcessScorer(ml.ProcessConfig{
		Command: a.cfg.Scorer.Command,
		Args:    a.cfg.Scorer.Args,
		Dir:     a.cfg.Scorer.Dir,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return proc, nil
	}
	instrumented, err := ml.NewInstrumentedScorer(proc, meter)
	if err != nil {
		return nil, err
	}
	return instrumented, nil
}

func (a *app) newRedisClient(ctx context.Context) (*goredis.Client, error) {
	return redisinfra.NewClient(ctx, redisinfra.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
}

// newJWTService returns nil when auth is not configured.
func (a *app) newJWTService() (*auth.JWTService, error) {
	if !a.cfg.AuthEnabled() {
		a.logger.Warn("authentication disabled: no JWT secret or public key configured")
		return nil, nil
	}

	jwtCfg := auth.JWTConfig{
		Secret: a.cfg.Auth.JWTSecret,
		Issuer: a.cfg.Auth.JWTIssuer,
	}
	if key := a.cfg.Auth.JWTPublicKey; key != "" {
		pem, err := auth.LoadKeyFromFile(key)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	return auth.NewJWTService(jwtCfg)
}
