package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/retail-ledger-go/internal/service"
	"github.com/boddenberg/retail-ledger-go/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const holderKey contextKey = "sessionHolder"

// JWTAuthMiddleware validates Bearer tokens, resolves the session they name
// and injects its holder into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			h, err := authSvc.Session(claims.SessionID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), holderKey, h)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HolderFromContext returns the session resolved by JWTAuthMiddleware.
func HolderFromContext(ctx context.Context) *session.Holder {
	h, _ := ctx.Value(holderKey).(*session.Holder)
	return h
}

// BulkheadMiddleware caps in-flight requests. A request that cannot get a slot
// within wait is answered with 503.
func BulkheadMiddleware(b *resilience.Bulkhead, wait time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), wait)
			err := b.Acquire(ctx)
			cancel()
			if err != nil {
				logger.Warn("bulkhead full",
					zap.String("path", r.URL.Path),
					zap.Int("in_flight", b.InFlight()),
				)
				writeError(w, http.StatusServiceUnavailable, "server busy, retry later")
				return
			}
			defer b.Release()

			next.ServeHTTP(w, r)
		})
	}
}
