package ledger

import (
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Transfer moves money out of one of the client's accounts.
type Transfer struct {
	SourceAccountID          string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	Memo                     string
}

// TransferResult carries the accounts after the transfer. Destination is nil
// when the destination number belongs to no account of the profile.
type TransferResult struct {
	Source      domain.Account
	Destination *domain.Account
	External    bool
}

// Transfer debits the source account and, when the destination number
// resolves inside the same profile, credits that account. Destinations
// outside the profile are accepted; only the source side is recorded.
func (e *Engine) Transfer(p *domain.ClientProfile, t Transfer) (*domain.ClientProfile, *TransferResult, error) {
	src, err := requireAccount(p, "source_account_id", t.SourceAccountID, domain.MsgNoSourceAccount)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.RequirePositive("amount", t.Amount); err != nil {
		return nil, nil, err
	}
	if t.DestinationAccountNumber == "" {
		return nil, nil, &domain.ErrValidation{Field: "destination_account_number", Message: "required"}
	}
	dst, internal := p.AccountByNumber(t.DestinationAccountNumber)
	if internal {
		if dst.ID == src.ID {
			return nil, nil, &domain.ErrValidation{Field: "destination_account_number", Message: "source and destination must differ"}
		}
		if dst.Currency != src.Currency {
			return nil, nil, &domain.ErrValidation{
				Field:   "destination_account_number",
				Message: fmt.Sprintf("currency mismatch: %s to %s", src.Currency, dst.Currency),
			}
		}
	}
	if err := requireFunds(src, t.Amount); err != nil {
		return nil, nil, err
	}

	next := p.Clone()
	nsrc, _ := next.Account(src.ID)
	nsrc.Apply(e.movement("Transferencia a "+t.DestinationAccountNumber, t.Amount.Neg(), t.Memo))

	res := &TransferResult{External: !internal}
	if internal {
		ndst, _ := next.Account(dst.ID)
		ndst.Apply(e.movement("Transferencia de "+src.Number, t.Amount, t.Memo))
		cp := ndst.Clone()
		res.Destination = &cp
	}
	next.SyncDebitCards()
	res.Source = nsrc.Clone()
	return next, res, nil
}
