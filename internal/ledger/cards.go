package ledger

import (
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// CardPayment pays down a credit card's outstanding debt.
type CardPayment struct {
	CardID string
	Amount decimal.Decimal
	// FromAccountID optionally funds the payment from an account. When empty
	// no account is debited.
	FromAccountID string
}

// CardPaymentResult carries the card and, if one funded the payment, the account.
type CardPaymentResult struct {
	Card    domain.Card
	Account *domain.Account
}

// PayCreditCard lowers the card's debt by the amount. Paying more than the
// current debt is rejected.
func (e *Engine) PayCreditCard(p *domain.ClientProfile, cp CardPayment) (*domain.ClientProfile, *CardPaymentResult, error) {
	card, err := requireCreditCard(p, cp.CardID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.RequirePositive("amount", cp.Amount); err != nil {
		return nil, nil, err
	}
	if cp.Amount.GreaterThan(card.Balance) {
		return nil, nil, &domain.ErrValidation{Field: "amount", Message: domain.MsgExceedsDebt}
	}
	var from *domain.Account
	if cp.FromAccountID != "" {
		acc, ok := p.Account(cp.FromAccountID)
		if !ok {
			return nil, nil, &domain.ErrNotFound{Resource: "account", ID: cp.FromAccountID}
		}
		if err := requireFunds(acc, cp.Amount); err != nil {
			return nil, nil, err
		}
		from = acc
	}

	next := p.Clone()
	ncard, _ := next.Card(card.ID)
	ncard.Balance = ncard.Balance.Sub(cp.Amount)
	ncard.Record(e.movement("Pago de tarjeta", cp.Amount, domain.KindCardPayment))

	res := &CardPaymentResult{}
	if from != nil {
		nacc, _ := next.Account(from.ID)
		nacc.Apply(e.movement("Pago de tarjeta "+card.Number, cp.Amount.Neg(), domain.KindCardPayment))
		acc := nacc.Clone()
		res.Account = &acc
	}
	next.SyncDebitCards()
	res.Card = ncard.Clone()
	return next, res, nil
}

// CardMovement records a purchase, refund or other line against a card.
type CardMovement struct {
	CardID          string
	Date            time.Time // zero means today
	Description     string
	Amount          decimal.Decimal
	Kind            string
	LinkedAccountID string
}

// CardMovementResult carries the card and the linked account when one was touched.
type CardMovementResult struct {
	Card    domain.Card
	Account *domain.Account
}

// RecordCardMovement appends a movement to a card and keeps the linked account
// consistent with it.
//
// Credit: the debt moves opposite to the signed amount (a purchase of -X adds X
// of debt) and, when an account is linked, the account balance moves by the
// amount with the same entry appended.
//
// A debit larger than the linked account's balance is rejected for both kinds.
//
// Debit: the linked account is the source of funds. Its balance moves by the
// amount with the entry appended, the card log gets the entry too, and the
// card balance is set to mirror the account.
func (e *Engine) RecordCardMovement(p *domain.ClientProfile, cm CardMovement) (*domain.ClientProfile, *CardMovementResult, error) {
	card, ok := p.Card(cm.CardID)
	if !ok {
		return nil, nil, &domain.ErrNotFound{Resource: "card", ID: cm.CardID}
	}
	if err := domain.RequireNonZero("amount", cm.Amount); err != nil {
		return nil, nil, err
	}
	if cm.Description == "" {
		return nil, nil, &domain.ErrValidation{Field: "description", Message: "required"}
	}

	var linked *domain.Account
	switch card.Kind {
	case domain.CardCredit:
		if cm.Amount.IsPositive() && cm.Amount.GreaterThan(card.Balance) {
			return nil, nil, &domain.ErrValidation{Field: "amount", Message: domain.MsgExceedsDebt}
		}
		id := cm.LinkedAccountID
		if id == "" {
			id = card.LinkedAccountID
		}
		if id != "" {
			acc, ok := p.Account(id)
			if !ok {
				return nil, nil, &domain.ErrNotFound{Resource: "account", ID: id}
			}
			linked = acc
		}
	case domain.CardDebit:
		if cm.LinkedAccountID != "" && cm.LinkedAccountID != card.LinkedAccountID {
			return nil, nil, &domain.ErrValidation{Field: "linked_account_id", Message: "debit card is linked to a different account"}
		}
		acc, ok := p.Account(card.LinkedAccountID)
		if !ok {
			return nil, nil, &domain.ErrNotFound{Resource: "account", ID: card.LinkedAccountID}
		}
		linked = acc
	default:
		return nil, nil, &domain.ErrValidation{Field: "card", Message: "unknown card kind " + string(card.Kind)}
	}
	if linked != nil && cm.Amount.IsNegative() {
		if err := requireFunds(linked, cm.Amount.Neg()); err != nil {
			return nil, nil, err
		}
	}

	entry := e.movement(cm.Description, cm.Amount, cm.Kind)
	if !cm.Date.IsZero() {
		entry.Date = domain.Today(cm.Date)
	}

	next := p.Clone()
	ncard, _ := next.Card(card.ID)
	ncard.Record(entry)

	res := &CardMovementResult{}
	if linked != nil {
		nacc, _ := next.Account(linked.ID)
		nacc.Apply(entry)
		acc := nacc.Clone()
		res.Account = &acc
	}
	if ncard.Kind == domain.CardCredit {
		ncard.Balance = ncard.Balance.Sub(cm.Amount)
	}
	next.SyncDebitCards()
	res.Card = ncard.Clone()
	return next, res, nil
}

func requireCreditCard(p *domain.ClientProfile, id string) (*domain.Card, error) {
	card, ok := p.Card(id)
	if !ok || !card.IsCredit() {
		return nil, &domain.ErrNotFound{Resource: "credit card", ID: id}
	}
	return card, nil
}
