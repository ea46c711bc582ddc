package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Loans
// ============================================================

// InstallmentStatus is the stored state of a loan installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

// LoanInstallment is one scheduled payment of a loan.
type LoanInstallment struct {
	Sequence int               `json:"sequence"`
	DueDate  time.Time         `json:"due_date"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   InstallmentStatus `json:"status"`
}

// EffectiveStatus classifies a pending installment whose due date has passed
// as overdue. It is derived on read and never stored.
func (i LoanInstallment) EffectiveStatus(now time.Time) InstallmentStatus {
	if i.Status == InstallmentPending && Today(i.DueDate).Before(Today(now)) {
		return InstallmentOverdue
	}
	return i.Status
}

// Loan is a customer loan with a fixed installment schedule.
type Loan struct {
	ID                 string            `json:"id"`
	Principal          decimal.Decimal   `json:"principal"`
	OutstandingBalance decimal.Decimal   `json:"outstanding_balance"`
	InterestRate       decimal.Decimal   `json:"interest_rate"`
	StartDate          time.Time         `json:"start_date"`
	Installments       []LoanInstallment `json:"installments"`
}

// Settled reports whether nothing remains outstanding.
func (l *Loan) Settled() bool {
	return !l.OutstandingBalance.IsPositive()
}

// Installment returns the installment with the given sequence number.
func (l *Loan) Installment(seq int) (*LoanInstallment, bool) {
	for i := range l.Installments {
		if l.Installments[i].Sequence == seq {
			return &l.Installments[i], true
		}
	}
	return nil, false
}

// NextPending returns the lowest-sequence installment still pending.
func (l *Loan) NextPending() (*LoanInstallment, bool) {
	for i := range l.Installments {
		if l.Installments[i].Status == InstallmentPending {
			return &l.Installments[i], true
		}
	}
	return nil, false
}

// PaidCount returns how many installments are paid.
func (l *Loan) PaidCount() int {
	n := 0
	for _, i := range l.Installments {
		if i.Status == InstallmentPaid {
			n++
		}
	}
	return n
}

// Reduce lowers the outstanding balance by amount, clamping at zero.
func (l *Loan) Reduce(amount decimal.Decimal) {
	l.OutstandingBalance = decimal.Max(decimal.Zero, l.OutstandingBalance.Sub(amount))
}

func (l Loan) Clone() Loan {
	if l.Installments != nil {
		l.Installments = append(make([]LoanInstallment, 0, len(l.Installments)), l.Installments...)
	}
	return l
}
