package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pigate/internal/forensic/activity"
	"pigate/internal/forensic/identity"
	forensicmetrics "pigate/internal/forensic/metrics"
	"pigate/internal/forensic/publisher"
	forensic "pigate/internal/forensic/service"
	auditstore "pigate/internal/forensic/store"
	"pigate/internal/forensic/suspicion"
	"pigate/internal/forensic/validation"
	"pigate/internal/integrity"
	controlstore "pigate/internal/integrity/store"
	jwttoken "pigate/internal/jwt_token"
	"pigate/internal/liquidity"
	"pigate/internal/platform/config"
	"pigate/internal/platform/httpserver"
	"pigate/internal/platform/kafka"
	"pigate/internal/platform/logger"
	"pigate/internal/platform/metrics"
	"pigate/internal/platform/postgres"
	pgredis "pigate/internal/platform/redis"
	"pigate/internal/transfer"
	transferstore "pigate/internal/transfer/store"
	httptransport "pigate/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("pigate stopped", "error", err)
		os.Exit(1)
	}
}

// transferBackend is what the transfer store must offer the transfer
// service, the breaker and the liquidity reporter.
type transferBackend interface {
	transfer.Store
	integrity.TransferFreezer
	liquidity.Aggregator
}

type backends struct {
	audits    forensic.Store
	transfers transferBackend
	control   integrity.ControlReader
	tx        integrity.StoreTx
	health    map[string]httptransport.HealthCheck
	closers   []func() error
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range b.closers {
			if err := c(); err != nil {
				log.Warn("close backend", "error", err)
			}
		}
	}()

	fm := forensicmetrics.New()
	control := integrity.New(b.control, b.tx,
		integrity.WithLogger(log),
		integrity.WithMetrics(fm),
		integrity.WithStorageTimeout(cfg.StorageTimeout),
	)
	watch := integrity.NewPersistenceWatch(control, cfg.Forensic.PersistFailureThreshold, log)

	denylist, history, err := openRedis(ctx, cfg, b)
	if err != nil {
		return err
	}

	opts := []forensic.Option{
		forensic.WithLogger(log),
		forensic.WithMetrics(fm),
		forensic.WithDegrader(control),
		forensic.WithPersistenceObserver(watch),
		forensic.WithActivityHistory(history),
		forensic.WithStorageTimeout(cfg.StorageTimeout),
	}

	var wg sync.WaitGroup
	pubCtx, stopPublisher := context.WithCancel(context.Background())
	defer func() {
		stopPublisher()
		wg.Wait()
	}()
	producer, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		b.closers = append(b.closers, func() error { producer.Close(); return nil })
		if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.Replicas); err != nil {
			return err
		}
		pub := publisher.New(producer, cfg.Kafka.AuditTopic,
			publisher.WithLogger(log),
			publisher.WithMetrics(fm),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pub.Run(pubCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit publisher stopped", "error", err)
			}
		}()
		opts = append(opts, forensic.WithPublisher(pub))
		b.health["kafka"] = func(ctx context.Context) error { return kafka.Ping(ctx, producer) }
	}

	verifier := identity.New(denylist, identity.WithLogger(log))
	validator := validation.New(cfg.Forensic.HighRiskThreshold)
	detector := suspicion.New(suspicion.Config{
		RapidOperationCount:       cfg.Forensic.RapidOperationCount,
		RapidWindow:               cfg.Forensic.RapidWindow,
		LargeTransactionThreshold: cfg.Forensic.LargeTxThreshold,
		NewAccountThreshold:       cfg.Forensic.NewAccountThreshold,
		NewAccountAge:             cfg.Forensic.NewAccountAge,
	})
	audits, err := forensic.New(b.audits, verifier, validator, detector, control, opts...)
	if err != nil {
		return fmt.Errorf("forensic service: %w", err)
	}

	transfers, err := transfer.New(audits, control, b.transfers,
		transfer.WithLogger(log),
		transfer.WithMetrics(fm),
		transfer.WithStorageTimeout(cfg.StorageTimeout),
	)
	if err != nil {
		return fmt.Errorf("transfer service: %w", err)
	}
	reporter, err := liquidity.New(control, b.transfers,
		liquidity.WithLogger(log),
		liquidity.WithMetrics(fm),
		liquidity.WithStorageTimeout(cfg.StorageTimeout),
	)
	if err != nil {
		return fmt.Errorf("liquidity reporter: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	if cfg.AdminTokenHash == "" {
		log.Warn("ADMIN_TOKEN_HASH is not set, operator endpoints are disabled")
	}
	router := httptransport.NewRouter(
		httptransport.New(audits, transfers, control, reporter, log),
		httptransport.RouterConfig{
			Logger:         log,
			Metrics:        metrics.New(),
			JWTValidator:   jwttoken.NewJWTServiceAdapter(jwtService),
			AdminTokenHash: cfg.AdminTokenHash,
			HealthChecks:   b.health,
		},
	)
	srv := httpserver.New(cfg.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pigate", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openBackends selects PostgreSQL when DATABASE_URL is set and the in-memory
// stores otherwise.
func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	b := &backends{health: map[string]httptransport.HealthCheck{}}
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL is not set, using in-memory stores")
		transfers := transferstore.NewInMemoryStore()
		control := controlstore.NewInMemoryStore()
		b.audits = auditstore.NewInMemoryStore()
		b.transfers = transfers
		b.control = control
		b.tx = controlstore.NewInMemoryTx(control, transfers)
		return b, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	transfers := transferstore.NewPostgres(db)
	b.audits = auditstore.NewPostgres(db)
	b.transfers = transfers
	b.control = controlstore.NewPostgres(db)
	b.tx = controlstore.NewPostgresTx(db, transfers)
	b.health["postgres"] = db.PingContext
	b.closers = append(b.closers, db.Close)
	return b, nil
}

// openRedis returns the denylist and activity history, redis-backed when
// REDIS_URL is set.
func openRedis(ctx context.Context, cfg config.Server, b *backends) (identity.Denylist, forensic.ActivityHistory, error) {
	client, err := pgredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		history := activity.NewMemoryHistory(cfg.Forensic.RapidWindow, activity.DefaultMaxEntries)
		return identity.NewMemoryDenylist(cfg.Forensic.DeniedIPs...), history, nil
	}

	b.closers = append(b.closers, client.Close)
	b.health["redis"] = client.Health

	denylist := identity.NewRedisDenylist(client.Client)
	for _, ip := range cfg.Forensic.DeniedIPs {
		if err := denylist.Add(ctx, ip); err != nil {
			return nil, nil, fmt.Errorf("seed ip denylist: %w", err)
		}
	}
	history := activity.NewRedisHistory(client.Client, activity.WithWindow(cfg.Forensic.RapidWindow))
	return denylist, history, nil
}
