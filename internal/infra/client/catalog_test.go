package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/client"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{"clients":[{"client_id":"R1","national_id":"7","password":"pw"}]}`

func TestCatalogClient_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	c := client.NewCatalogClient(srv.Client(), srv.URL,
		resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 3, InitialBackoff: 5 * time.Millisecond})

	recs, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "R1", recs[0].ClientID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCatalogClient_WrapsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.NewCatalogClient(srv.Client(), srv.URL,
		resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: 5 * time.Millisecond})

	_, err := c.Load(context.Background())
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "catalog", ext.Service)
}

func TestCatalogClient_DoesNotRetryClientErrors(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
		"bad document": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"clients":[{"unexpected":true}]}`))
		},
	} {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				handler(w, r)
			}))
			defer srv.Close()

			c := client.NewCatalogClient(srv.Client(), srv.URL,
				resilience.NewCircuitBreaker("test"),
				resilience.Config{MaxRetries: 3, InitialBackoff: 5 * time.Millisecond})

			_, err := c.Load(context.Background())
			var ext *domain.ErrExternalService
			require.ErrorAs(t, err, &ext)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}
