package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/catalog"
	"github.com/boddenberg/retail-ledger-go/internal/config"
	"github.com/boddenberg/retail-ledger-go/internal/handler"
	"github.com/boddenberg/retail-ledger-go/internal/infra/client"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Strings("catalog_paths", cfg.CatalogPaths),
		zap.String("catalog_url", cfg.CatalogURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
	)
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using the development default")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.TracerEndpoint(), "retail-ledger")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Catalog ---
	sources := catalogSources(cfg, resilienceCfg)
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	records, err := catalog.Load(loadCtx, sources...)
	cancelLoad()
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Strings("sources", names), zap.Error(err))
	}

	cat, err := catalog.Build(records, cfg.BcryptCost)
	if err != nil {
		logger.Fatal("invalid catalog", zap.Error(err))
	}
	metrics.SetCatalogClients(cat.Len())
	logger.Info("catalog loaded",
		zap.Strings("sources", names),
		zap.Int("clients", cat.Len()),
	)

	// --- Ledger & sessions ---
	engine := ledger.NewEngine()
	sessions := service.NewSessionRegistry(cfg.SessionTTL, metrics, logger)
	defer sessions.Close()

	// --- Services ---
	authSvc := service.NewAuthService(cat, engine, sessions, cfg.JWTSecret, cfg.JWTAccessTTL, metrics, logger)
	ledgerSvc := service.NewLedgerService(metrics, logger)

	// --- Router ---
	router := handler.NewRouter(authSvc, ledgerSvc, metrics, resilience.NewBulkhead(cfg.MaxConcurrency), logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// catalogSources picks where client profiles come from: local files and/or a
// remote document, falling back to the embedded seed when neither is set.
func catalogSources(cfg *config.Config, rc resilience.Config) []catalog.Source {
	var sources []catalog.Source
	for _, p := range cfg.CatalogPaths {
		sources = append(sources, catalog.FileSource{Path: p})
	}
	if cfg.CatalogURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		cb := resilience.NewCircuitBreaker("catalog-api")
		sources = append(sources, client.NewCatalogClient(httpClient, cfg.CatalogURL, cb, rc))
	}
	if len(sources) == 0 {
		sources = append(sources, catalog.EmbeddedSource{})
	}
	return sources
}
