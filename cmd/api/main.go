package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/albin6/cellsphere/api/routes"
	"github.com/albin6/cellsphere/internal/banners"
	"github.com/albin6/cellsphere/internal/cart"
	"github.com/albin6/cellsphere/internal/coupons"
	"github.com/albin6/cellsphere/internal/offers"
	"github.com/albin6/cellsphere/internal/orders"
	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/internal/sales"
	"github.com/albin6/cellsphere/internal/stock"
	"github.com/albin6/cellsphere/internal/wallet"
	"github.com/albin6/cellsphere/pkg/auth"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db"
	"github.com/albin6/cellsphere/pkg/logger"
	"github.com/albin6/cellsphere/pkg/metrics"
	"github.com/albin6/cellsphere/pkg/migrate"
	"github.com/albin6/cellsphere/pkg/outbox"
	"github.com/albin6/cellsphere/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	signer, err := auth.NewSigner(cfg.JWT)
	if err != nil {
		logg.Error(ctx, "invalid jwt configuration", err)
		os.Exit(1)
	}

	params := routes.Params{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
		Tokens: signer,
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		params.Redis = redisClient
		params.Idempotency = redisClient
		params.RateLimits = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency and rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	params.Gatherer = registry

	if err := wireServices(cfg, logg, dbClient, registry, &params); err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}

func wireServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, reg prometheus.Registerer, params *routes.Params) error {
	conn := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(conn), logg)
	catalog := products.NewRepository(conn)
	walletLedger := wallet.NewLedger(conn)

	walletSvc, err := wallet.NewService(walletLedger, dbClient, events)
	if err != nil {
		return err
	}
	couponSvc, err := coupons.NewService(coupons.ServiceParams{
		Repository:         coupons.NewRepository(conn),
		Tx:                 dbClient,
		ClampFixedToAmount: cfg.Coupon.ClampFixedToAmount,
	})
	if err != nil {
		return err
	}
	cartSvc, err := cart.NewService(cart.NewRepository(conn))
	if err != nil {
		return err
	}
	salesSvc, err := sales.NewService(sales.ServiceParams{
		Repository:  sales.NewRepository(conn),
		StatusBySKU: cfg.OrderPolicy.SalesStatusBySKU,
	})
	if err != nil {
		return err
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repository: orders.NewRepository(conn),
		Tx:         dbClient,
		Outbox:     events,
		Catalog:    catalog,
		Stock:      stock.NewLedger(conn),
		Wallet:     walletLedger,
		Refunds:    walletSvc,
		Coupons:    couponSvc,
		Cart:       cartSvc,
		Sales:      salesSvc,
		Policy:     cfg.OrderPolicy,
		Metrics:    metrics.NewOrderMetrics(reg),
		Logger:     logg,
	})
	if err != nil {
		return err
	}
	productSvc, err := products.NewService(catalog)
	if err != nil {
		return err
	}
	offerSvc, err := offers.NewService(offers.ServiceParams{
		Repository: offers.NewRepository(conn),
		Catalog:    catalog,
		Tx:         dbClient,
		Logger:     logg,
	})
	if err != nil {
		return err
	}
	bannerSvc, err := banners.NewService(banners.ServiceParams{
		Repository: banners.NewRepository(conn),
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	params.Orders = ordersSvc
	params.Coupons = couponSvc
	params.Wallet = walletSvc
	params.Sales = salesSvc
	params.Products = productSvc
	params.Offers = offerSvc
	params.Banners = bannerSvc
	return nil
}
