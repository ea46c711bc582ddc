// Package service holds the services behind the HTTP handlers. AuthService
// opens and closes ledger sessions and issues the JWT access tokens that
// identify them.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/cache"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/port"
	"github.com/boddenberg/retail-ledger-go/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const tokenIssuer = "retail-ledger"

// AuthService orchestrates login, logout and session lookup.
type AuthService struct {
	catalog   port.Authenticator
	engine    *ledger.Engine
	sessions  port.Cache[*session.Holder]
	jwtSecret []byte
	accessTTL time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	catalog port.Authenticator,
	engine *ledger.Engine,
	sessions port.Cache[*session.Holder],
	jwtSecret string,
	accessTTL time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		catalog:   catalog,
		engine:    engine,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

// NewSessionRegistry builds the TTL cache that holds active sessions. Evicted
// holders are logged out and the active-session gauge follows the cache.
func NewSessionRegistry(ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *cache.InMemory[*session.Holder] {
	return cache.New[*session.Holder](ttl, cache.WithEvictHook(func(id string, h *session.Holder) {
		h.Logout()
		metrics.SessionClosed()
		logger.Debug("session evicted",
			zap.String("session_id", id),
			zap.String("client_id", h.ClientID()),
		)
	}))
}

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	h, err := session.Authenticate(s.catalog, s.engine, req.NationalID, req.Password)
	if err != nil {
		s.metrics.IncrAuthAttempt(observability.OutcomeFailure)
		s.logger.Warn("login: invalid credentials")
		return nil, err
	}

	token, err := s.signAccessToken(h.ClientID(), h.ID())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	profile, err := h.Profile()
	if err != nil {
		return nil, fmt.Errorf("read new session: %w", err)
	}

	s.sessions.Set(h.ID(), h)
	s.metrics.SessionOpened()
	s.metrics.IncrAuthAttempt(observability.OutcomeSuccess)
	span.SetAttributes(attribute.String("client.id", h.ClientID()))

	s.logger.Info("client logged in",
		zap.String("client_id", h.ClientID()),
		zap.String("session_id", h.ID()),
	)

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		SessionID:   h.ID(),
		ClientID:    h.ClientID(),
		FullName:    profile.FullName,
	}, nil
}

// ============================================================
// Logout: POST /v1/auth/logout
// ============================================================

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	h, ok := s.sessions.Get(sessionID)
	if !ok {
		return &domain.ErrUnauthorized{Message: "session expired"}
	}
	s.sessions.Delete(sessionID)
	h.Logout()

	s.logger.Info("client logged out",
		zap.String("client_id", h.ClientID()),
		zap.String("session_id", sessionID),
	)
	return nil
}

// Session returns the live holder for sessionID and renews its TTL.
func (s *AuthService) Session(sessionID string) (*session.Holder, error) {
	h, ok := s.sessions.Touch(sessionID)
	if !ok || h.Closed() {
		return nil, &domain.ErrUnauthorized{Message: "session expired"}
	}
	return h, nil
}

// ============================================================
// ValidateToken: used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	SessionID string `json:"sid"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" || claims.SessionID == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(clientID, sessionID string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		SessionID: sessionID,
		Type:      "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
