package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/retail-ledger-go/internal/catalog"
	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/session"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openSession(t *testing.T) *session.Holder {
	t.Helper()
	recs, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	cat, err := catalog.Build(recs, bcrypt.MinCost)
	require.NoError(t, err)

	engine := ledger.NewEngine(ledger.WithClock(func() time.Time { return fixedNow }))
	h, err := session.Authenticate(cat, engine, "1-0111-0111", "ana2026")
	require.NoError(t, err)
	return h
}

func TestAuthenticate(t *testing.T) {
	h := openSession(t)
	assert.Equal(t, "CLI-0001", h.ClientID())
	assert.NotEmpty(t, h.ID())
	assert.Equal(t, fixedNow, h.OpenedAt())
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	recs, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	cat, err := catalog.Build(recs, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = session.Authenticate(cat, ledger.NewEngine(), "1-0111-0111", "nope")
	var unauthorized *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}

func TestHolder_TransferSwapsAggregate(t *testing.T) {
	h := openSession(t)

	res, err := h.Transfer(ledger.Transfer{
		SourceAccountID:          "ACC-0001",
		DestinationAccountNumber: "300-99-123456",
		Amount:                   dec("45000"),
		Memo:                     "alquiler",
	})
	require.NoError(t, err)
	assert.True(t, res.External)
	assert.True(t, res.Source.Balance.Equal(dec("800000")))

	p, err := h.Profile()
	require.NoError(t, err)
	acc, _ := p.Account("ACC-0001")
	assert.True(t, acc.Balance.Equal(dec("800000")))
	assert.True(t, acc.Reconciled())

	debit, _ := p.Card("DEB-0001")
	assert.True(t, debit.Balance.Equal(dec("800000")))
}

func TestHolder_ProfileIsSnapshot(t *testing.T) {
	h := openSession(t)

	p, err := h.Profile()
	require.NoError(t, err)
	p.Accounts[0].Balance = decimal.Zero

	again, err := h.Profile()
	require.NoError(t, err)
	assert.True(t, again.Accounts[0].Balance.Equal(dec("845000")))
}

func TestHolder_RejectedOperationKeepsAggregate(t *testing.T) {
	h := openSession(t)
	before, err := h.Profile()
	require.NoError(t, err)

	_, err = h.PayInstallment(ledger.InstallmentPayment{LoanID: "LOAN-0001", Sequence: 3, FromAccountID: "ACC-0002"})
	var insufficient *domain.ErrInsufficientFunds
	require.ErrorAs(t, err, &insufficient)

	after, err := h.Profile()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHolder_LoanAndCardOperations(t *testing.T) {
	h := openSession(t)

	lp, err := h.PayInstallment(ledger.InstallmentPayment{LoanID: "LOAN-0001", Sequence: 3, FromAccountID: "ACC-0001"})
	require.NoError(t, err)
	assert.True(t, lp.Loan.OutstandingBalance.Equal(dec("2100000")))

	xp, err := h.PayExtraordinary(ledger.ExtraordinaryPayment{LoanID: "LOAN-0001", FromAccountID: "ACC-0001", Amount: dec("100000")})
	require.NoError(t, err)
	assert.True(t, xp.Loan.OutstandingBalance.Equal(dec("2000000")))

	cp, err := h.PayCreditCard(ledger.CardPayment{CardID: "CRD-0001", Amount: dec("30500")})
	require.NoError(t, err)
	assert.True(t, cp.Card.Balance.Equal(dec("200000")))

	cm, err := h.RecordCardMovement(ledger.CardMovement{CardID: "DEB-0001", Description: "Farmacia", Amount: dec("-5000"), Kind: "salud"})
	require.NoError(t, err)
	require.NotNil(t, cm.Account)
	assert.True(t, cm.Account.Balance.Equal(dec("440000")))
	assert.True(t, cm.Card.Balance.Equal(dec("440000")))

	stmt, err := h.Statement("ACC-0001", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, stmt, 6)
	assert.True(t, stmt.Sum().Equal(dec("440000")))
}

func TestHolder_Schedule(t *testing.T) {
	h := openSession(t)

	sched, err := h.Schedule("LOAN-0001")
	require.NoError(t, err)
	require.Len(t, sched, 4)
	assert.Equal(t, domain.InstallmentPaid, sched[0].EffectiveStatus)
	assert.Equal(t, domain.InstallmentOverdue, sched[2].EffectiveStatus)
	assert.Equal(t, domain.InstallmentOverdue, sched[3].EffectiveStatus)
}

func TestHolder_Logout(t *testing.T) {
	h := openSession(t)
	h.Logout()
	assert.True(t, h.Closed())

	var unauthorized *domain.ErrUnauthorized
	_, err := h.Profile()
	assert.ErrorAs(t, err, &unauthorized)
	_, err = h.Transfer(ledger.Transfer{SourceAccountID: "ACC-0001", DestinationAccountNumber: "x", Amount: dec("1")})
	assert.ErrorAs(t, err, &unauthorized)
	_, err = h.Schedule("LOAN-0001")
	assert.ErrorAs(t, err, &unauthorized)
}

func TestHolder_ConcurrentOperationsSerialize(t *testing.T) {
	h := openSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Transfer(ledger.Transfer{
				SourceAccountID:          "ACC-0001",
				DestinationAccountNumber: "300-99-123456",
				Amount:                   dec("1000"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := h.Profile()
	require.NoError(t, err)
	acc, _ := p.Account("ACC-0001")
	assert.True(t, acc.Balance.Equal(dec("795000")), acc.Balance.String())
	assert.Len(t, acc.Movements, 53)
	assert.True(t, acc.Reconciled())
}
