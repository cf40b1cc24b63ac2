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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/comicverse/comicverse-backend/api/routes"
	"github.com/comicverse/comicverse-backend/internal/auth"
	"github.com/comicverse/comicverse-backend/internal/cart"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	"github.com/comicverse/comicverse-backend/internal/checkout"
	"github.com/comicverse/comicverse-backend/internal/events"
	"github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/internal/users"
	"github.com/comicverse/comicverse-backend/pkg/auth/session"
	"github.com/comicverse/comicverse-backend/pkg/config"
	"github.com/comicverse/comicverse-backend/pkg/db"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/mercadopago"
	"github.com/comicverse/comicverse-backend/pkg/metrics"
	"github.com/comicverse/comicverse-backend/pkg/migrate"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
	"github.com/comicverse/comicverse-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	deps, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}
	deps.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

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
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		closeErr = multierr.Append(closeErr, <-serveErr)
		if closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logg.Error(ctx, "api server shutdown error", closeErr)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

// buildServices wires repositories and domain services into the router deps.
func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	checkoutMetrics *metrics.CheckoutMetrics,
) (routes.Deps, error) {
	catalogRepo := catalog.NewRepository(dbClient.DB())

	source, err := buildCatalogSource(cfg, logg, catalogRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	catalogService, err := catalog.NewService(source, catalogRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	var cartStore cart.Store
	if cfg.FeatureFlags.EphemeralCart {
		cartStore = cart.NewMemoryStore()
	} else {
		cartStore = cart.NewRepository(dbClient.DB())
	}

	cartService, err := cart.NewService(cartStore, catalogRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		cartStore,
		catalogRepo,
		outboxService,
		int64(cfg.Checkout.ShippingFeeCents),
	)
	if err != nil {
		return routes.Deps{}, err
	}

	eventsService, err := events.NewService(redisClient, cfg.Events.QueueTTL, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	authService, err := auth.NewService(
		users.NewRepository(dbClient.DB()),
		sessionManager,
		cfg.JWT,
		cfg.Password,
		logg,
	)
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutService, err := buildCheckoutService(cfg, logg, ordersService, cartService, eventsService, redisClient, checkoutMetrics)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Auth:     authService,
		Catalog:  catalogService,
		Cart:     cartService,
		Orders:   ordersService,
		Checkout: checkoutService,
		Events:   eventsService,
	}, nil
}

func buildCatalogSource(cfg *config.Config, logg *logger.Logger, repo catalog.Repository) (catalog.Source, error) {
	if cfg.Catalog.UsesRemoteSource() {
		return catalog.NewRemoteSource(cfg.Catalog, logg)
	}
	return catalog.NewLocalSource(repo)
}

// buildCheckoutService leaves the payment gateway unset when no access token
// is configured; the redirect path then reports itself as disabled.
func buildCheckoutService(
	cfg *config.Config,
	logg *logger.Logger,
	ordersService orders.Service,
	cartService cart.Service,
	eventsService *events.Service,
	redisClient *redis.Client,
	checkoutMetrics *metrics.CheckoutMetrics,
) (*checkout.Service, error) {
	opts := checkout.Options{
		AttemptLockTTL:    cfg.Checkout.AttemptLockTTL,
		PreferenceTimeout: cfg.Checkout.PreferenceTimeout,
	}

	if cfg.MercadoPago.AccessToken == "" {
		return checkout.NewService(ordersService, cartService, nil, redisClient, eventsService, checkoutMetrics, logg, opts)
	}

	gateway, err := mercadopago.NewClient(cfg.MercadoPago, logg)
	if err != nil {
		return nil, err
	}
	return checkout.NewService(ordersService, cartService, gateway, redisClient, eventsService, checkoutMetrics, logg, opts)
}
