package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Cards
// ============================================================

// CardKind is the discriminant of the Card sum type.
type CardKind string

const (
	CardCredit CardKind = "credit"
	CardDebit  CardKind = "debit"
)

// CreditTerms holds the fields only credit cards carry.
type CreditTerms struct {
	Limit          decimal.Decimal `json:"limit"`
	ExpirationDate string          `json:"expiration_date"` // MM/YY
	SecurityCode   string          `json:"-"`
}

// Card is either a credit card (Credit != nil) or a debit card, selected by Kind.
//
// For credit cards Balance is the outstanding debt. For debit cards Balance
// mirrors the linked account and LinkedAccountID is required.
type Card struct {
	ID              string          `json:"id"`
	Kind            CardKind        `json:"kind"`
	Number          string          `json:"number"`
	Balance         decimal.Decimal `json:"balance"`
	LinkedAccountID string          `json:"linked_account_id,omitempty"`
	Credit          *CreditTerms    `json:"credit,omitempty"`
	Movements       MovementLog     `json:"movements"`
}

// IsCredit reports whether the card is the credit variant.
func (c *Card) IsCredit() bool { return c.Kind == CardCredit }

// AvailableCredit is the unused part of the credit limit. It can be negative:
// the limit is informative and not enforced by the engine.
func (c *Card) AvailableCredit() decimal.Decimal {
	if c.Credit == nil {
		return decimal.Zero
	}
	return c.Credit.Limit.Sub(c.Balance)
}

// Expired reports whether a credit card is past its MM/YY expiration at now.
func (c *Card) Expired(now time.Time) bool {
	if c.Credit == nil || c.Credit.ExpirationDate == "" {
		return false
	}
	exp, err := time.Parse("01/06", c.Credit.ExpirationDate)
	if err != nil {
		return false
	}
	// valid through the last day of the expiration month
	return !now.Before(exp.AddDate(0, 1, 0))
}

// Record appends m to the card log without touching the balance.
func (c *Card) Record(m MovementEntry) {
	c.Movements = append(c.Movements, m)
}

func (c Card) Clone() Card {
	c.Movements = c.Movements.clone()
	if c.Credit != nil {
		terms := *c.Credit
		c.Credit = &terms
	}
	return c
}

// CardSet groups a profile's cards by variant.
type CardSet struct {
	Credit []Card `json:"credit"`
	Debit  []Card `json:"debit"`
}
