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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/rosema/rosema-backend/api/routes"
	"github.com/rosema/rosema-backend/internal/cartstore"
	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/dashboard"
	"github.com/rosema/rosema-backend/internal/sales"
	"github.com/rosema/rosema-backend/internal/session"
	"github.com/rosema/rosema-backend/pkg/config"
	"github.com/rosema/rosema-backend/pkg/db"
	"github.com/rosema/rosema-backend/pkg/logger"
	"github.com/rosema/rosema-backend/pkg/metrics"
	"github.com/rosema/rosema-backend/pkg/migrate"
	"github.com/rosema/rosema-backend/pkg/redis"
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
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(registry)
	saleMetrics := metrics.NewSaleMetrics(registry)

	productRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(productRepo, catalog.Options{
		SearchLimit:       cfg.Catalog.SearchLimit,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
	})
	if err != nil {
		return err
	}

	catalogAdmin, err := catalog.NewAdmin(productRepo)
	if err != nil {
		return err
	}

	salesRepo := sales.NewRepository(dbClient.DB())
	salesService, err := sales.NewService(dbClient, salesRepo, productRepo, saleMetrics, logg)
	if err != nil {
		return err
	}

	storeLocation, err := cfg.Store.Location()
	if err != nil {
		return err
	}
	dashboardService, err := dashboard.NewService(catalogAdmin, salesRepo, salesService, dashboard.Options{
		Location: storeLocation,
	})
	if err != nil {
		return err
	}

	stateStore, err := cartstore.New(redisClient, cfg.Cart.StateTTL)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Options{
		CacheSize: cfg.Cart.SessionCacheSize,
		Catalog:   catalogService,
		Store:     stateStore,
		Recorder:  cartMetrics,
		Logger:    logg,
		Formatter: checkout.NewFormatter(time.Now),
		Sales:     salesService,
	})
	if err != nil {
		return err
	}

	money, err := checkout.NewMoney(cfg.Store.Locale, cfg.Store.Currency)
	if err != nil {
		return err
	}
	renderer, err := checkout.NewRenderer(checkout.StoreInfo{
		Name:          cfg.Store.Name,
		WhatsAppPhone: cfg.Store.WhatsAppPhone,
		PickupAddress: cfg.Store.PickupAddress,
		OpeningHours:  cfg.Store.OpeningHours,
	}, money)
	if err != nil {
		return err
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
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), catalogService, catalogAdmin, dashboardService, sessions, salesService, renderer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
