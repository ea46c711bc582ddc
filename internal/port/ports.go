// Package port defines the interfaces (ports) the service layer depends on.
// Concrete implementations live in catalog and infra.
package port

import (
	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// Authenticator resolves credentials to a private copy of a client profile.
// Implemented by *catalog.Catalog.
type Authenticator interface {
	Authenticate(nationalID, password string) (*domain.ClientProfile, error)
}

// Cache provides generic caching with TTL.
// Implemented by *cache.InMemory.
type Cache[T any] interface {
	Get(key string) (T, bool)
	// Touch returns the value and renews its TTL.
	Touch(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Len() int
}
