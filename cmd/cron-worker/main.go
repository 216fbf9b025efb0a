package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/albin6/cellsphere/internal/cron"
	"github.com/albin6/cellsphere/internal/offers"
	"github.com/albin6/cellsphere/internal/otp"
	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db"
	"github.com/albin6/cellsphere/pkg/instance"
	"github.com/albin6/cellsphere/pkg/logger"
	"github.com/albin6/cellsphere/pkg/metrics"
	"github.com/albin6/cellsphere/pkg/migrate"
	"github.com/albin6/cellsphere/pkg/outbox"
	"github.com/albin6/cellsphere/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"interval":    cfg.Cron.Interval.String(),
		"workerId":    instance.GetID(),
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer closeWith(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer closeWith(logg, "redis", redisClient.Close)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), 0)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}
	jobs, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	svc, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	if cfg.App.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.App.MetricsAddr, prometheus.DefaultGatherer); err != nil {
				logg.Error(ctx, "metrics endpoint stopped", err)
			}
		}()
	}

	logg.Info(ctx, "starting cron worker")
	return svc.Run(ctx)
}

func closeWith(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(logg.WithField(context.Background(), "resource", name), "close failed", err)
	}
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()

	otpSvc, err := otp.NewService(otp.ServiceParams{
		Repository: otp.NewRepository(conn),
		Tx:         dbClient,
		Hashing:    cfg.Password,
		TTL:        cfg.OTP.TTL,
	})
	if err != nil {
		return nil, err
	}
	otpJob, err := cron.NewOTPCleanupJob(otpSvc)
	if err != nil {
		return nil, err
	}

	offerSvc, err := offers.NewService(offers.ServiceParams{
		Repository: offers.NewRepository(conn),
		Catalog:    products.NewRepository(conn),
		Tx:         dbClient,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}
	offerJob, err := cron.NewOfferExpiryJob(offerSvc)
	if err != nil {
		return nil, err
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		DB:           dbClient,
		Repository:   outbox.NewRepository(conn),
		DeadLetters:  outbox.NewDLQRepository(conn),
		Retention:    cfg.Outbox.Retention,
		DLQRetention: cfg.Outbox.DLQRetention,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(otpJob, offerJob, retentionJob), nil
}
