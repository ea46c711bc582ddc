package domain

import (
	"github.com/shopspring/decimal"
)

// ============================================================
// Accounts
// ============================================================

// Currency of an account.
type Currency string

const (
	CurrencyColones Currency = "Colones"
	CurrencyDolares Currency = "Dolares"
	CurrencyEuros   Currency = "Euros"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyColones, CurrencyDolares, CurrencyEuros:
		return true
	}
	return false
}

// AccountType distinguishes debit and credit accounts.
type AccountType string

const (
	AccountDebit  AccountType = "Debit"
	AccountCredit AccountType = "Credit"
)

// Account represents a customer account in one currency.
type Account struct {
	ID             string          `json:"id"`
	Currency       Currency        `json:"currency"`
	Type           AccountType     `json:"type"`
	Number         string          `json:"number"`
	Balance        decimal.Decimal `json:"balance"`
	IBAN           string          `json:"iban,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Movements      MovementLog     `json:"movements"`
}

// Reconciled reports whether the balance equals the opening balance plus
// every recorded movement.
func (a *Account) Reconciled() bool {
	return a.OpeningBalance.Add(a.Movements.Sum()).Equal(a.Balance)
}

// Apply moves the balance by m.Amount and records m. Both change together.
func (a *Account) Apply(m MovementEntry) {
	a.Balance = a.Balance.Add(m.Amount)
	a.Movements = append(a.Movements, m)
}

func (a Account) Clone() Account {
	a.Movements = a.Movements.clone()
	return a
}
