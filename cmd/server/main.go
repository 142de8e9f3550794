package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	jwttoken "obligo/internal/jwt_token"
	obligationstore "obligo/internal/obligation/store"
	organizationstore "obligo/internal/organization/store"
	"obligo/internal/platform/config"
	"obligo/internal/platform/httpserver"
	"obligo/internal/platform/kafka"
	"obligo/internal/platform/logger"
	"obligo/internal/platform/postgres"
	"obligo/internal/platform/redis"
	"obligo/internal/publishing/handler"
	"obligo/internal/publishing/metrics"
	"obligo/internal/publishing/publisher"
	"obligo/internal/publishing/service"
	"obligo/internal/publishing/store/assignment"
	"obligo/pkg/platform/audit/publishers/compliance"
	auditstore "obligo/pkg/platform/audit/store/postgres"
	"obligo/pkg/platform/audit/worker"
)

const (
	outboxTopicPartitions  = 3
	outboxTopicReplication = 1
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("obligo exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()
	svc, err := buildService(cfg, db, redisClient, m, log)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	router := newRouter(routerDeps{
		publishing: handler.New(svc, log),
		operators:  jwtService,
		health:     healthCheck(db, redisClient),
		logger:     log,
	})

	// Everything that can fail at startup is built before any goroutine runs.
	components := []func(context.Context) error{
		func(ctx context.Context) error {
			return httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout, log)
		},
	}
	if cfg.RelayEnabled() {
		relay, closeRelay, err := buildRelay(ctx, cfg, db, log)
		if err != nil {
			return err
		}
		defer closeRelay()
		components = append(components, relay.Run)
	} else {
		log.Info("outbox relay disabled: KAFKA_BROKERS not set")
	}

	return serve(ctx, components...)
}

// serve runs components until ctx is done or the first one fails, which
// cancels the rest. Cancellation is a clean exit.
func serve(ctx context.Context, components ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range components {
		g.Go(func() error { return run(gctx) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildService(cfg config.Config, db *sql.DB, redisClient *redis.Client, m *metrics.Metrics, log *slog.Logger) (*service.Service, error) {
	assignments := assignment.NewPostgres(db,
		assignment.WithInsertChunk(cfg.Publish.InsertChunk),
		assignment.WithLookupChunk(cfg.Publish.LookupChunk),
	)

	var organizations service.OrganizationStore = organizationstore.NewPostgres(db)
	if redisClient != nil {
		organizations = organizationstore.NewCached(organizations, redisClient.Client, cfg.Redis.OrgCacheTTL,
			organizationstore.WithCacheLogger(log),
			organizationstore.WithCacheMetrics(m),
		)
	}

	auditPublisher := compliance.New(auditstore.New(db), compliance.WithLogger(log))
	pub := publisher.New(assignment.NewPostgresTx(db, assignments, cfg.Publish.TxTimeout),
		publisher.WithLogger(log),
		publisher.WithMetrics(m),
		publisher.WithAuditPublisher(auditPublisher),
	)

	return service.New(obligationstore.NewPostgres(db), organizations, assignments, pub,
		service.WithLogger(log),
		service.WithMetrics(m),
	)
}

func buildRelay(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger) (*worker.Worker, func(), error) {
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := producer.EnsureTopic(ctx, outboxTopicPartitions, outboxTopicReplication); err != nil {
		producer.Close()
		return nil, nil, err
	}
	relay := worker.NewWorker(auditstore.New(db), producer,
		worker.WithInterval(cfg.Kafka.PollInterval),
		worker.WithBatchSize(cfg.Kafka.BatchSize),
		worker.WithLogger(log),
	)
	log.Info("outbox relay enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return relay, producer.Close, nil
}
