package domain

import (
	"github.com/shopspring/decimal"
)

// ============================================================
// Client profile
// ============================================================

// ClientType distinguishes natural persons from companies.
type ClientType string

const (
	ClientIndividual  ClientType = "Individual"
	ClientLegalEntity ClientType = "LegalEntity"
)

// ClientProfile is the aggregate of one customer's accounts, cards and loans.
// Credentials are kept by the catalog and never travel with the profile.
type ClientProfile struct {
	ClientID      string          `json:"client_id"`
	FullName      string          `json:"full_name"`
	NationalID    string          `json:"national_id"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	ClientType    ClientType      `json:"client_type"`
	Username      string          `json:"username"`
	Accounts      []Account       `json:"accounts"`
	Cards         CardSet         `json:"cards"`
	Loans         []Loan          `json:"loans,omitempty"`
}

// Clone returns a deep copy. Nothing in the copy aliases p.
func (p *ClientProfile) Clone() *ClientProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Accounts != nil {
		cp.Accounts = make([]Account, len(p.Accounts))
		for i, a := range p.Accounts {
			cp.Accounts[i] = a.Clone()
		}
	}
	cp.Cards = CardSet{Credit: cloneCards(p.Cards.Credit), Debit: cloneCards(p.Cards.Debit)}
	if p.Loans != nil {
		cp.Loans = make([]Loan, len(p.Loans))
		for i, l := range p.Loans {
			cp.Loans[i] = l.Clone()
		}
	}
	return &cp
}

func cloneCards(in []Card) []Card {
	if in == nil {
		return nil
	}
	out := make([]Card, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Account returns the account with the given id.
func (p *ClientProfile) Account(id string) (*Account, bool) {
	for i := range p.Accounts {
		if p.Accounts[i].ID == id {
			return &p.Accounts[i], true
		}
	}
	return nil, false
}

// AccountByNumber returns the account displayed under number.
func (p *ClientProfile) AccountByNumber(number string) (*Account, bool) {
	for i := range p.Accounts {
		if p.Accounts[i].Number == number {
			return &p.Accounts[i], true
		}
	}
	return nil, false
}

// Card returns the card with the given id from either variant.
func (p *ClientProfile) Card(id string) (*Card, bool) {
	for i := range p.Cards.Credit {
		if p.Cards.Credit[i].ID == id {
			return &p.Cards.Credit[i], true
		}
	}
	for i := range p.Cards.Debit {
		if p.Cards.Debit[i].ID == id {
			return &p.Cards.Debit[i], true
		}
	}
	return nil, false
}

// Loan returns the loan with the given id.
func (p *ClientProfile) Loan(id string) (*Loan, bool) {
	for i := range p.Loans {
		if p.Loans[i].ID == id {
			return &p.Loans[i], true
		}
	}
	return nil, false
}

// SyncDebitCards sets every debit card's balance to its linked account's.
func (p *ClientProfile) SyncDebitCards() {
	for i := range p.Cards.Debit {
		if acc, ok := p.Account(p.Cards.Debit[i].LinkedAccountID); ok {
			p.Cards.Debit[i].Balance = acc.Balance
		}
	}
}
