package ledger

import (
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// Statement returns the movements of an account or card dated within
// [from, to]. Zero bounds are open.
func Statement(p *domain.ClientProfile, ownerID string, from, to time.Time) (domain.MovementLog, error) {
	if acc, ok := p.Account(ownerID); ok {
		return acc.Movements.Between(from, to), nil
	}
	if card, ok := p.Card(ownerID); ok {
		return card.Movements.Between(from, to), nil
	}
	return nil, &domain.ErrNotFound{Resource: "account or card", ID: ownerID}
}

// Schedule lists a loan's installments with their status as of now.
func Schedule(p *domain.ClientProfile, loanID string, now time.Time) ([]domain.ScheduleEntry, error) {
	loan, ok := p.Loan(loanID)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "loan", ID: loanID}
	}
	out := make([]domain.ScheduleEntry, len(loan.Installments))
	for i, inst := range loan.Installments {
		out[i] = domain.ScheduleEntry{LoanInstallment: inst, EffectiveStatus: inst.EffectiveStatus(now)}
	}
	return out, nil
}
