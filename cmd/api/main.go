package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfwise/bookstore-backend/api/controllers"
	"github.com/shelfwise/bookstore-backend/api/routes"
	"github.com/shelfwise/bookstore-backend/internal/catalog"
	"github.com/shelfwise/bookstore-backend/internal/fulfillment"
	"github.com/shelfwise/bookstore-backend/internal/orders"
	"github.com/shelfwise/bookstore-backend/internal/warehouse"
	"github.com/shelfwise/bookstore-backend/pkg/config"
	"github.com/shelfwise/bookstore-backend/pkg/db"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	"github.com/shelfwise/bookstore-backend/pkg/metrics"
	"github.com/shelfwise/bookstore-backend/pkg/migrate"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
	"github.com/shelfwise/bookstore-backend/pkg/redis"
)

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	warehouseMetrics := metrics.NewWarehouseMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	catalogRepo := catalog.NewRepository(dbClient.DB())

	warehouseService, err := warehouse.NewService(
		warehouse.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		warehouseMetrics,
		catalogRepo,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	fulfillService, err := fulfillment.NewService(
		ordersService,
		warehouseService,
		dbClient,
		outboxService,
		warehouseMetrics,
		nil,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:           cfg,
		Logger:           logg,
		WarehouseService: warehouseService,
		OrdersService:    ordersService,
		FulfillService:   fulfillService,
		IdempotencyStore: redisClient,
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
