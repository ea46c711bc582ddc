package ledger

import (
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// InstallmentPayment pays one scheduled installment from an account.
type InstallmentPayment struct {
	LoanID        string
	Sequence      int
	FromAccountID string
}

// ExtraordinaryPayment pays an arbitrary amount off a loan outside the schedule.
type ExtraordinaryPayment struct {
	LoanID        string
	FromAccountID string
	Amount        decimal.Decimal
}

// LoanPaymentResult carries the loan and the paying account after a payment.
type LoanPaymentResult struct {
	Loan    domain.Loan
	Account domain.Account
}

// PayInstallment debits the installment amount from the account, reduces the
// outstanding balance (never below zero) and marks the installment paid.
func (e *Engine) PayInstallment(p *domain.ClientProfile, ip InstallmentPayment) (*domain.ClientProfile, *LoanPaymentResult, error) {
	loan, ok := p.Loan(ip.LoanID)
	if !ok {
		return nil, nil, &domain.ErrNotFound{Resource: "loan", ID: ip.LoanID}
	}
	inst, ok := loan.Installment(ip.Sequence)
	if !ok {
		return nil, nil, &domain.ErrNotFound{Resource: "installment", ID: fmt.Sprintf("%s#%d", loan.ID, ip.Sequence)}
	}
	if inst.Status != domain.InstallmentPending {
		return nil, nil, &domain.ErrValidation{Field: "installment", Message: fmt.Sprintf("installment %d is %s, not pending", inst.Sequence, inst.Status)}
	}
	acc, err := requireAccount(p, "from_account_id", ip.FromAccountID, domain.MsgNoAccount)
	if err != nil {
		return nil, nil, err
	}
	if err := requireFunds(acc, inst.Amount); err != nil {
		return nil, nil, err
	}

	next := p.Clone()
	nloan, _ := next.Loan(loan.ID)
	ninst, _ := nloan.Installment(inst.Sequence)
	nacc, _ := next.Account(acc.ID)

	nacc.Apply(e.movement(fmt.Sprintf("Pago cuota %d préstamo %s", inst.Sequence, loan.ID), inst.Amount.Neg(), domain.KindLoan))
	nloan.Reduce(inst.Amount)
	ninst.Status = domain.InstallmentPaid
	next.SyncDebitCards()

	return next, &LoanPaymentResult{Loan: nloan.Clone(), Account: nacc.Clone()}, nil
}

// PayExtraordinary debits the full amount from the account and reduces the
// outstanding balance by it, clamped at zero. No installment changes state.
func (e *Engine) PayExtraordinary(p *domain.ClientProfile, xp ExtraordinaryPayment) (*domain.ClientProfile, *LoanPaymentResult, error) {
	loan, ok := p.Loan(xp.LoanID)
	if !ok {
		return nil, nil, &domain.ErrNotFound{Resource: "loan", ID: xp.LoanID}
	}
	if err := domain.RequirePositive("amount", xp.Amount); err != nil {
		return nil, nil, err
	}
	if loan.Settled() {
		return nil, nil, &domain.ErrValidation{Field: "loan", Message: "loan already settled"}
	}
	acc, err := requireAccount(p, "from_account_id", xp.FromAccountID, domain.MsgNoAccount)
	if err != nil {
		return nil, nil, err
	}
	if err := requireFunds(acc, xp.Amount); err != nil {
		return nil, nil, err
	}

	next := p.Clone()
	nloan, _ := next.Loan(loan.ID)
	nacc, _ := next.Account(acc.ID)

	nacc.Apply(e.movement("Abono extraordinario préstamo "+loan.ID, xp.Amount.Neg(), domain.KindLoan))
	nloan.Reduce(xp.Amount)
	next.SyncDebitCards()

	return next, &LoanPaymentResult{Loan: nloan.Clone(), Account: nacc.Clone()}, nil
}
