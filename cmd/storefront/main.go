// Storefront - catalog, cart and checkout API in front of a WooCommerce store.
// Designed for Cloud Run deployment: cart and wishlist live in client cookies.
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

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"storefront/internal/adapter"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/transport"
	"storefront/internal/woocommerce"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize structured logger
	logger := initLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("store_id", cfg.StoreID),
		slog.String("environment", cfg.Environment),
		slog.String("store_url", cfg.Store.URL),
		slog.String("currency", cfg.Store.Currency),
		slog.Duration("upstream_timeout", cfg.UpstreamTimeout),
		slog.Duration("category_cache_ttl", cfg.CategoryCacheTTL),
		slog.String("category_fallback", string(cfg.CategoryFallback)),
		slog.Bool("tls_fingerprint", cfg.TLSFingerprint),
	)

	rec, provider, err := initMetrics(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	if provider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	store, err := woocommerce.New(woocommerce.Config{
		StoreURL:       cfg.Store.URL,
		ConsumerKey:    cfg.Store.ConsumerKey,
		ConsumerSecret: cfg.Store.ConsumerSecret,
		Timeout:        cfg.UpstreamTimeout,
		Fingerprint:    cfg.TLSFingerprint,
		Metrics:        rec,
	})
	if err != nil {
		return fmt.Errorf("creating WooCommerce client: %w", err)
	}

	probeVersion(ctx, store, cfg, logger)

	catalogService := catalog.NewService(store, catalog.Options{
		Timeout:  cfg.UpstreamTimeout,
		CacheTTL: cfg.CategoryCacheTTL,
		Fallback: cfg.CategoryFallback,
		Metrics:  rec,
		Logger:   logger,
	})

	payments := payment.NewNormalizer(catalogService, logger)
	submitter := checkout.NewSubmitter(orderGateway(cfg, store, logger), catalogService, payments, checkout.Options{
		Timeout: cfg.UpstreamTimeout,
		Metrics: rec,
		Logger:  logger,
	})

	h := handler.New(handler.Config{
		Catalog:       catalogService,
		Payments:      payments,
		Checkout:      submitter,
		Orders:        store,
		Logger:        logger,
		Currency:      cfg.Store.Currency,
		SecureCookies: cfg.Environment == "production",
		Timeout:       cfg.UpstreamTimeout,
		Version:       version,
	})

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → logging → metrics → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.Metrics(rec),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// SIGHUP drops the category snapshot, e.g. after categories were
	// edited in the store admin
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	go func() {
		for range reload {
			catalogService.Invalidate()
			logger.Info("category cache invalidated")
		}
	}()

	// Channel for server errors
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
			slog.String("version", version),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initMetrics sets up OTLP export when enabled. Otherwise instruments are
// no-ops and the provider is nil.
func initMetrics(ctx context.Context, cfg *config.Config) (*metrics.Recorder, *sdkmetric.MeterProvider, error) {
	if !cfg.Telemetry.Enabled {
		return metrics.NewNoop(), nil, nil
	}
	return metrics.Setup(ctx, metrics.Options{
		Endpoint:       cfg.Telemetry.Endpoint,
		Headers:        cfg.Telemetry.Headers,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
	})
}

// orderGateway picks where checkout orders go: the configured order endpoint,
// or the platform's orders API.
func orderGateway(cfg *config.Config, store *woocommerce.Client, logger *slog.Logger) adapter.OrderGateway {
	if cfg.OrderEndpoint == "" {
		return store
	}
	logger.Info("checkout orders go to order endpoint", slog.String("url", cfg.OrderEndpoint))
	return checkout.NewEndpointGateway(cfg.OrderEndpoint, &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: transport.New(transport.Options{Timeout: cfg.UpstreamTimeout}),
	})
}

// probeVersion logs the store software versions. The server starts either
// way: the probe needs system status access the read key may lack.
func probeVersion(ctx context.Context, store *woocommerce.Client, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
	defer cancel()

	info, err := store.CheckVersion(ctx, cfg.MinWCVersion)
	if err != nil {
		logger.Warn("store version probe failed", slog.String("error", err.Error()))
		return
	}

	attrs := []any{
		slog.String("woocommerce", info.WooCommerce),
		slog.String("wordpress", info.WordPress),
		slog.String("store_currency", info.Currency),
	}
	if !info.Supported {
		logger.Warn("store WooCommerce version below minimum",
			append(attrs, slog.String("minimum", cfg.MinWCVersion))...)
		return
	}
	logger.Info("store version checked", attrs...)
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
