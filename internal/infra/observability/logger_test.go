package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.True(t, observability.NewLogger("debug").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, observability.NewLogger("warn").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, observability.NewLogger("bogus").Core().Enabled(zapcore.InfoLevel))
}

func TestZapLoggerMiddleware_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	for _, status := range []int{http.StatusOK, http.StatusUnprocessableEntity, http.StatusBadGateway} {
		h := observability.ZapLoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/profile", nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "/v1/profile", entries[0].ContextMap()["path"])
	}
}

func TestWithTrace_NoSpan(t *testing.T) {
	logger := zap.NewNop()
	assert.Same(t, logger, observability.WithTrace(context.Background(), logger))
}
