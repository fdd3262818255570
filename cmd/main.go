package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/sbilibin2017/txn-lifecycle/docs"
	"github.com/sbilibin2017/txn-lifecycle/internal/config"
	"github.com/sbilibin2017/txn-lifecycle/internal/events"
	"github.com/sbilibin2017/txn-lifecycle/internal/facades"
	"github.com/sbilibin2017/txn-lifecycle/internal/handlers"
	"github.com/sbilibin2017/txn-lifecycle/internal/jwt"
	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/middlewares"
	"github.com/sbilibin2017/txn-lifecycle/internal/repositories"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
	"github.com/sbilibin2017/txn-lifecycle/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title txn-lifecycle API
// @version 1.0
// @description Transaction orchestration, fraud evaluation and notification dispatch.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run initializes the logger and the stores needed by the enabled
// components, mounts their routes and serves until ctx is cancelled or a
// termination signal arrives.
func run(ctx context.Context, cfg config.Config) error {
	if err := logger.Initialize(cfg.App.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infow("logger initialized", "level", cfg.App.LogLevel, "components", cfg.App.Components)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	tokens := jwt.New(cfg.JWT.SecretKey, cfg.JWT.Exp)
	thresholds := cfg.Policy.Thresholds()

	publisher := events.NewKafkaPublisher(nil)
	if len(cfg.Kafka.Brokers) > 0 {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = events.NewKafkaPublisher(writer)
		defer publisher.Close()
		logger.Log.Infow("Kafka publishing enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	handlers.RegisterHealthHandler(r, handlers.NewHealthHandler(cfg.App.Components))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.App.Host, cfg.App.Port)),
	))

	var db *sqlx.DB
	if cfg.Enabled(config.ComponentTransaction) || cfg.Enabled(config.ComponentFraud) || cfg.Enabled(config.ComponentNotification) {
		var err error
		db, err = openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repositories.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.Enabled(config.ComponentTransaction) {
		rdb := openRedis(ctx, cfg.Redis)
		defer rdb.Close()

		svc := services.NewTransactionService(
			repositories.NewTransactionWriteRepository(db),
			repositories.NewTransactionReadRepository(db),
			repositories.NewIdempotencyRepository(rdb, cfg.Redis.InFlightTTL),
			publisher,
			rules.ClassificationPolicy(thresholds),
			cfg.Policy.DefaultCurrency,
		)
		handlers.RegisterCreateTransactionHandler(r, handlers.NewCreateTransactionHandler(svc))
		handlers.RegisterListTransactionsHandler(r, handlers.NewListTransactionsHandler(svc))
		handlers.RegisterGetTransactionHandler(r, handlers.NewGetTransactionHandler(svc))
		handlers.RegisterSetStatusHandler(r, handlers.NewSetStatusHandler(svc),
			middlewares.AuthMiddleware(tokens, jwt.RoleOperator, jwt.RoleService))
	}

	if cfg.Enabled(config.ComponentFraud) {
		svc := services.NewFraudService(
			repositories.NewFraudCheckWriteRepository(db),
			repositories.NewFraudCheckReadRepository(db),
			publisher,
			rules.FraudPolicy(thresholds),
		)
		handlers.RegisterFraudCheckHandler(r, handlers.NewFraudCheckHandler(svc))
		handlers.RegisterGetFraudCheckHandler(r, handlers.NewGetFraudCheckHandler(svc))
		handlers.RegisterListFraudChecksHandler(r, handlers.NewListFraudChecksHandler(svc))
	}

	if cfg.Enabled(config.ComponentNotification) {
		svc := services.NewNotificationService(
			repositories.NewNotificationWriteRepository(db),
			repositories.NewNotificationReadRepository(db),
			publisher,
		)
		handlers.RegisterNotifyHandler(r, handlers.NewNotifyHandler(svc))
		handlers.RegisterTransactionNotificationsHandler(r, handlers.NewTransactionNotificationsHandler(svc))
		handlers.RegisterListNotificationsHandler(r, handlers.NewListNotificationsHandler(svc))
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Enabled(config.ComponentGateway) {
		serviceToken := func(ctx context.Context) (string, error) {
			return tokens.Generate(ctx, config.ComponentGateway, jwt.RoleService)
		}
		orchestrator := facades.NewTransactionFacade(facades.NewClient(cfg.Services.TransactionURL, cfg.Services.Timeout, serviceToken))
		evaluator := facades.NewFraudFacade(facades.NewClient(cfg.Services.FraudURL, cfg.Services.Timeout, serviceToken))
		dispatcher := facades.NewNotificationFacade(facades.NewClient(cfg.Services.NotificationURL, cfg.Services.Timeout, serviceToken))

		workflow := services.NewPaymentWorkflow(orchestrator, evaluator, dispatcher)
		reconciler := services.NewReconciler(orchestrator, evaluator, cfg.Reconcile.Concurrency)

		handlers.RegisterPaymentHandler(r, handlers.NewPaymentHandler(workflow))
		handlers.RegisterPaymentSummaryHandler(r, handlers.NewPaymentSummaryHandler(workflow))
		handlers.RegisterReconcileHandler(r, handlers.NewReconcileHandler(reconciler),
			middlewares.AuthMiddleware(tokens, jwt.RoleOperator))

		if cfg.Reconcile.Interval > 0 {
			g.Go(func() error {
				reconciler.Start(gctx, cfg.Reconcile.Interval)
				return nil
			})
		}

		if len(cfg.Kafka.Brokers) > 0 {
			reader := events.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
			consumer := events.NewVerdictConsumer(reader, workflow)
			g.Go(func() error {
				defer reader.Close()
				if err := consumer.Run(gctx); err != nil {
					logger.Log.Errorw("verdict consumer stopped, relying on reconciler", "error", err)
				}
				return nil
			})
		}
	}

	if cfg.GRPC.Port != "" {
		if err := serveGRPCHealth(gctx, g, cfg.GRPC.Port); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port),
		Handler: r,
	}

	g.Go(func() error {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorw("HTTP server shutdown error", "error", err)
		}
		logger.Log.Info("HTTP server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*sqlx.DB, error) {
	logger.Log.Infow("connecting to PostgreSQL", "host", cfg.Host, "port", cfg.Port, "db", cfg.DB)

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	return db, nil
}

// openRedis connects the idempotency store. An unreachable Redis is not
// fatal: creation then relies on the unique idempotency key column.
func openRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Warnw("Redis unavailable, idempotency falls back to the store", "addr", cfg.Addr(), "error", err)
	}
	return rdb
}

// serveGRPCHealth exposes the standard gRPC health service on port until
// ctx is done.
func serveGRPCHealth(ctx context.Context, g *errgroup.Group, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("gRPC listen: %w", err)
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g.Go(func() error {
		logger.Log.Infof("gRPC health server listening on %s", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hs.Shutdown()
		srv.GracefulStop()
		return nil
	})
	return nil
}
