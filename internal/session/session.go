// Package session holds one authenticated client's ledger aggregate for the
// lifetime of a login. A Holder serializes operations on its aggregate and
// swaps in the engine's result only when an operation succeeds.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
)

// Authenticator resolves credentials to a private copy of a client profile.
// *catalog.Catalog satisfies it.
type Authenticator interface {
	Authenticate(nationalID, password string) (*domain.ClientProfile, error)
}

// Holder owns the aggregate of one session.
type Holder struct {
	id       string
	clientID string
	openedAt time.Time
	engine   *ledger.Engine

	mu      sync.Mutex
	profile *domain.ClientProfile
	closed  bool
}

// Authenticate checks credentials and opens a session over a fresh copy of the
// client's profile.
func Authenticate(auth Authenticator, engine *ledger.Engine, nationalID, password string) (*Holder, error) {
	profile, err := auth.Authenticate(nationalID, password)
	if err != nil {
		return nil, err
	}
	return &Holder{
		id:       uuid.NewString(),
		clientID: profile.ClientID,
		openedAt: engine.Now(),
		engine:   engine,
		profile:  profile,
	}, nil
}

// ID is the session identifier.
func (h *Holder) ID() string { return h.id }

// ClientID is the id of the authenticated client.
func (h *Holder) ClientID() string { return h.clientID }

// OpenedAt is when the session was created, per the engine clock.
func (h *Holder) OpenedAt() time.Time { return h.openedAt }

// Profile returns a snapshot of the current aggregate. The caller may modify it
// freely.
func (h *Holder) Profile() (*domain.ClientProfile, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errClosed
	}
	return h.profile.Clone(), nil
}

// Transfer moves money out of one of the client's accounts.
func (h *Holder) Transfer(t ledger.Transfer) (*ledger.TransferResult, error) {
	return apply(h, func(p *domain.ClientProfile) (*domain.ClientProfile, *ledger.TransferResult, error) {
		return h.engine.Transfer(p, t)
	})
}

// PayCreditCard reduces a credit card's debt.
func (h *Holder) PayCreditCard(cp ledger.CardPayment) (*ledger.CardPaymentResult, error) {
	return apply(h, func(p *domain.ClientProfile) (*domain.ClientProfile, *ledger.CardPaymentResult, error) {
		return h.engine.PayCreditCard(p, cp)
	})
}

// RecordCardMovement books a purchase or refund on a card.
func (h *Holder) RecordCardMovement(cm ledger.CardMovement) (*ledger.CardMovementResult, error) {
	return apply(h, func(p *domain.ClientProfile) (*domain.ClientProfile, *ledger.CardMovementResult, error) {
		return h.engine.RecordCardMovement(p, cm)
	})
}

// PayInstallment pays one pending loan installment.
func (h *Holder) PayInstallment(ip ledger.InstallmentPayment) (*ledger.LoanPaymentResult, error) {
	return apply(h, func(p *domain.ClientProfile) (*domain.ClientProfile, *ledger.LoanPaymentResult, error) {
		return h.engine.PayInstallment(p, ip)
	})
}

// PayExtraordinary applies an extra payment against a loan's outstanding balance.
func (h *Holder) PayExtraordinary(xp ledger.ExtraordinaryPayment) (*ledger.LoanPaymentResult, error) {
	return apply(h, func(p *domain.ClientProfile) (*domain.ClientProfile, *ledger.LoanPaymentResult, error) {
		return h.engine.PayExtraordinary(p, xp)
	})
}

// Statement lists the movements of an account or card between from and to.
func (h *Holder) Statement(ownerID string, from, to time.Time) (domain.MovementLog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errClosed
	}
	return ledger.Statement(h.profile, ownerID, from, to)
}

// Schedule lists a loan's installments with their effective status today.
func (h *Holder) Schedule(loanID string) ([]domain.ScheduleEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errClosed
	}
	return ledger.Schedule(h.profile, loanID, h.engine.Now())
}

// Logout discards the aggregate. Later calls fail with ErrUnauthorized.
func (h *Holder) Logout() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.profile = nil
}

// Closed reports whether Logout has been called.
func (h *Holder) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

var errClosed = &domain.ErrUnauthorized{Message: "session closed"}

func apply[R any](h *Holder, op func(*domain.ClientProfile) (*domain.ClientProfile, R, error)) (R, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero R
	if h.closed {
		return zero, errClosed
	}
	next, res, err := op(h.profile)
	if err != nil {
		return zero, err
	}
	h.profile = next
	return res, nil
}
