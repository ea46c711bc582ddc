// Package client holds adapters for remote services.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/catalog"
	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// maxCatalogBytes bounds the remote catalog document.
const maxCatalogBytes = 16 << 20

// CatalogClient fetches the client catalog document from a remote endpoint.
// It satisfies catalog.Source.
type CatalogClient struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewCatalogClient creates a new CatalogClient.
func NewCatalogClient(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CatalogClient {
	return &CatalogClient{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
	}
}

func (c *CatalogClient) Name() string { return "http:" + c.url }

// Load fetches and decodes the catalog with retry, circuit breaker, and tracing.
func (c *CatalogClient) Load(ctx context.Context) ([]catalog.ClientRecord, error) {
	ctx, span := tracer.Start(ctx, "CatalogClient.Load")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.url", c.url))

	result, err := c.cb.Execute(func() (any, error) {
		var records []catalog.ClientRecord
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return resilience.Permanent(fmt.Errorf("catalog API returned status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("catalog API returned status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
			if err != nil {
				return err
			}
			records, err = catalog.Decode(body)
			return resilience.Permanent(err)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return records, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &domain.ErrCircuitOpen{Service: "catalog"}
	}
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "catalog", Err: err}
	}

	span.SetAttributes(attribute.Int("catalog.clients", len(result.([]catalog.ClientRecord))))
	return result.([]catalog.ClientRecord), nil
}
