// Package ledger implements the mutation engine over a client profile.
//
// Every operation reads the profile it is given, validates all preconditions,
// and only then applies the change to a deep copy which it returns. The input
// profile is never modified, so a rejected call leaves it exactly as it was.
package ledger

import (
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Operation names, used for results, logs and metrics.
const (
	OpTransfer           = "transfer"
	OpPayCreditCard      = "pay_credit_card"
	OpRecordCardMovement = "record_card_movement"
	OpPayInstallment     = "pay_installment"
	OpPayExtraordinary   = "pay_extraordinary"
)

// Engine applies ledger operations. It holds no profile state.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to date movements.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine dating movements with the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) today() time.Time { return domain.Today(e.now()) }

func (e *Engine) movement(description string, amount decimal.Decimal, kind string) domain.MovementEntry {
	return domain.MovementEntry{
		Date:        e.today(),
		Description: description,
		Amount:      amount,
		Kind:        kind,
	}
}

func requireAccount(p *domain.ClientProfile, field, id, emptyMsg string) (*domain.Account, error) {
	if id == "" {
		return nil, &domain.ErrValidation{Field: field, Message: emptyMsg}
	}
	acc, ok := p.Account(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: id}
	}
	return acc, nil
}

func requireFunds(acc *domain.Account, amount decimal.Decimal) error {
	if acc.Balance.LessThan(amount) {
		return &domain.ErrInsufficientFunds{AccountID: acc.ID, Available: acc.Balance, Required: amount}
	}
	return nil
}
