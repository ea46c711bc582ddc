package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10000", "10000", true},
		{" 1,250.75 ", "1250.75", true},
		{"0.01", "0.01", true},
		{"0", "", false},
		{"-3", "", false},
		{"diez", "", false},
		{"", "", false},
		{"1,234,567", "1234567", true},
		{"10,5", "", false},
		{"1,25.75", "", false},
		{"12,3456", "", false},
		{",500", "", false},
	}

	for _, tt := range tests {
		got, err := domain.ParseAmount("amount", tt.in)
		if !tt.ok {
			var verr *domain.ErrValidation
			require.ErrorAs(t, err, &verr, tt.in)
			assert.Equal(t, domain.MsgInvalidAmount, verr.Message)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), tt.in)
	}
}

func TestParseSignedAmount(t *testing.T) {
	got, err := domain.ParseSignedAmount("amount", "-5,000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-5000).Equal(got))

	got, err = domain.ParseSignedAmount("amount", "1200.50")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1200.5").Equal(got))

	for _, in := range []string{"0", "", "mil", "-10,5"} {
		_, err := domain.ParseSignedAmount("amount", in)
		var verr *domain.ErrValidation
		assert.ErrorAs(t, err, &verr, in)
	}
}

func TestAmountInput_AcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		A domain.AmountInput `json:"a"`
		B domain.AmountInput `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 125.5, "b": "abc"}`), &body))
	assert.Equal(t, domain.AmountInput("125.5"), body.A)
	assert.Equal(t, domain.AmountInput("abc"), body.B)
}

func TestClone_DoesNotAlias(t *testing.T) {
	p := &domain.ClientProfile{
		Accounts: []domain.Account{{ID: "A1", Balance: decimal.NewFromInt(10)}},
		Cards: domain.CardSet{Credit: []domain.Card{{
			ID: "CC1", Kind: domain.CardCredit,
			Credit: &domain.CreditTerms{Limit: decimal.NewFromInt(100)},
		}}},
		Loans: []domain.Loan{{ID: "L1", Installments: []domain.LoanInstallment{{Sequence: 1, Status: domain.InstallmentPending}}}},
	}
	cp := p.Clone()

	cp.Accounts[0].Apply(domain.MovementEntry{Amount: decimal.NewFromInt(-4)})
	cp.Cards.Credit[0].Credit.Limit = decimal.NewFromInt(1)
	cp.Loans[0].Installments[0].Status = domain.InstallmentPaid

	assert.True(t, p.Accounts[0].Balance.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, p.Accounts[0].Movements)
	assert.True(t, p.Cards.Credit[0].Credit.Limit.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.InstallmentPending, p.Loans[0].Installments[0].Status)
}

func TestInstallmentEffectiveStatus(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	due := func(d int) time.Time { return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, domain.InstallmentOverdue, domain.LoanInstallment{DueDate: due(9), Status: domain.InstallmentPending}.EffectiveStatus(now))
	assert.Equal(t, domain.InstallmentPending, domain.LoanInstallment{DueDate: due(10), Status: domain.InstallmentPending}.EffectiveStatus(now))
	assert.Equal(t, domain.InstallmentPaid, domain.LoanInstallment{DueDate: due(1), Status: domain.InstallmentPaid}.EffectiveStatus(now))
}

func TestCardExpired(t *testing.T) {
	card := domain.Card{Kind: domain.CardCredit, Credit: &domain.CreditTerms{ExpirationDate: "03/26"}}

	assert.False(t, card.Expired(time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)))
	assert.True(t, card.Expired(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoanReduceClamps(t *testing.T) {
	l := domain.Loan{OutstandingBalance: decimal.NewFromInt(100)}
	l.Reduce(decimal.NewFromInt(250))
	assert.True(t, l.OutstandingBalance.IsZero())
	assert.True(t, l.Settled())
}

func TestToday_UsesCalendarDayOfClockZone(t *testing.T) {
	cr := time.FixedZone("CST", -6*60*60)
	late := time.Date(2026, time.March, 15, 23, 0, 0, 0, cr)

	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), domain.Today(late))

	day, err := domain.ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, domain.Today(late), day)

	_, err = domain.ParseDate("15/03/2026")
	assert.Error(t, err)
}
