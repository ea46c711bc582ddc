package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const bulkheadWait = 2 * time.Second

// NewRouter creates the HTTP router with all routes and middleware.
// authSvc and ledgerSvc may be nil while the catalog is still loading; the
// operational endpoints answer regardless.
func NewRouter(
	authSvc *service.AuthService,
	ledgerSvc *service.LedgerService,
	metrics *observability.Metrics,
	bulkhead *resilience.Bulkhead,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(metrics))
	r.Get("/readyz", readyzHandler(authSvc, ledgerSvc))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if bulkhead != nil {
			r.Use(BulkheadMiddleware(bulkhead, bulkheadWait, logger))
		}

		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

		if authSvc == nil || ledgerSvc == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "ledger not ready")
			}))
			return
		}

		// =============================================
		// Auth
		// =============================================
		r.Post("/auth/login", authLoginHandler(authSvc, logger))

		// =============================================
		// Session-scoped routes
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			r.Post("/auth/logout", authLogoutHandler(authSvc, logger))

			r.Get("/profile", profileHandler(ledgerSvc, logger))
			r.Get("/statements/{ownerId}", statementHandler(ledgerSvc, logger))
			r.Get("/loans/{loanId}/schedule", scheduleHandler(ledgerSvc, logger))

			r.Post("/transfers", transferHandler(ledgerSvc, logger))
			r.Post("/cards/{cardId}/payments", cardPaymentHandler(ledgerSvc, logger))
			r.Post("/cards/{cardId}/movements", cardMovementHandler(ledgerSvc, logger))
			r.Post("/loans/{loanId}/installments/{seq}/pay", installmentPaymentHandler(ledgerSvc, logger))
			r.Post("/loans/{loanId}/payments", extraordinaryPaymentHandler(ledgerSvc, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		snap := metrics.Snapshot(nil)

		catalog := domain.ServiceHealth{
			Name:        "catalog",
			Status:      "healthy",
			Detail:      fmt.Sprintf("%d clients", snap.CatalogClients),
			LastChecked: now,
		}
		if snap.CatalogClients == 0 {
			catalog.Status = "degraded"
		}
		services := []domain.ServiceHealth{
			{Name: "ledger-api", Status: "healthy", LastChecked: now},
			catalog,
			{Name: "sessions", Status: "healthy", Detail: fmt.Sprintf("%d active", snap.ActiveSessions), LastChecked: now},
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(authSvc *service.AuthService, ledgerSvc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authSvc == nil || ledgerSvc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot(service.Operations))
	}
}
