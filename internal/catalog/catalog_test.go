package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/boddenberg/retail-ledger-go/internal/catalog"
	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	recs, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	c, err := catalog.Build(recs, bcrypt.MinCost)
	require.NoError(t, err)
	return c
}

func TestEmbeddedSeed_Builds(t *testing.T) {
	c := seedCatalog(t)
	assert.Equal(t, 3, c.Len())
}

func TestAuthenticate(t *testing.T) {
	c := seedCatalog(t)

	for _, id := range []string{"1-0111-0111", "101110111", " 1 0111 0111 "} {
		p, err := c.Authenticate(id, "ana2026")
		require.NoError(t, err, id)
		assert.Equal(t, "CLI-0001", p.ClientID)
	}

	_, err := c.Authenticate("101110111", "wrong")
	var unauthorized *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)

	_, err = c.Authenticate("999999999", "ana2026")
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuthenticate_ReturnsPrivateCopies(t *testing.T) {
	c := seedCatalog(t)

	first, err := c.Authenticate("101110111", "ana2026")
	require.NoError(t, err)
	first.Accounts[0].Balance = decimal.Zero
	first.Loans[0].Installments[2].Status = domain.InstallmentPaid

	second, err := c.Authenticate("101110111", "ana2026")
	require.NoError(t, err)
	assert.True(t, second.Accounts[0].Balance.Equal(decimal.RequireFromString("845000")))
	assert.Equal(t, domain.InstallmentPending, second.Loans[0].Installments[2].Status)
}

func TestBuild_DerivesOpeningBalanceAndMirrorsDebitCards(t *testing.T) {
	c := seedCatalog(t)
	p, err := c.Authenticate("101110111", "ana2026")
	require.NoError(t, err)

	acc, ok := p.Account("ACC-0001")
	require.True(t, ok)
	assert.True(t, acc.Reconciled())
	assert.True(t, acc.OpeningBalance.Equal(decimal.RequireFromString("0")), acc.OpeningBalance.String())

	card, ok := p.Card("DEB-0001")
	require.True(t, ok)
	assert.True(t, card.Balance.Equal(acc.Balance))
	assert.Equal(t, domain.CardDebit, card.Kind)

	credit, ok := p.Card("CRD-0001")
	require.True(t, ok)
	require.NotNil(t, credit.Credit)
	assert.Equal(t, "321", credit.Credit.SecurityCode)
}

func TestBuild_Rejects(t *testing.T) {
	base := func() catalog.ClientRecord {
		return catalog.ClientRecord{
			NationalID: "1-1111-1111",
			Password:   "pw",
			Accounts:   []catalog.AccountRecord{{ID: "A1", Currency: "Colones", Number: "1"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *catalog.ClientRecord)
	}{
		{"unknown currency", func(r *catalog.ClientRecord) { r.Accounts[0].Currency = "Yenes" }},
		{"duplicate id", func(r *catalog.ClientRecord) {
			r.Loans = []catalog.LoanRecord{{ID: "A1"}}
		}},
		{"debit card without account", func(r *catalog.ClientRecord) {
			r.Cards.Debit = []catalog.DebitCardRecord{{ID: "D1", LinkedAccountID: "A9"}}
		}},
		{"credit card with unknown link", func(r *catalog.ClientRecord) {
			r.Cards.Credit = []catalog.CreditCardRecord{{ID: "C1", LinkedAccountID: "A9"}}
		}},
		{"duplicate installment", func(r *catalog.ClientRecord) {
			r.Loans = []catalog.LoanRecord{{ID: "L1", Installments: []catalog.InstallmentRecord{{Sequence: 1}, {Sequence: 1}}}}
		}},
		{"bad installment status", func(r *catalog.ClientRecord) {
			r.Loans = []catalog.LoanRecord{{ID: "L1", Installments: []catalog.InstallmentRecord{{Sequence: 1, Status: "late"}}}}
		}},
		{"empty password", func(r *catalog.ClientRecord) { r.Password = "" }},
		{"no national id", func(r *catalog.ClientRecord) { r.NationalID = "--" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base()
			tt.mutate(&rec)
			_, err := catalog.Build([]catalog.ClientRecord{rec}, bcrypt.MinCost)
			assert.Error(t, err)
		})
	}

	_, err := catalog.Build([]catalog.ClientRecord{base(), base()}, bcrypt.MinCost)
	assert.ErrorContains(t, err, "duplicate national id")
}

func TestBuild_SortsInstallments(t *testing.T) {
	rec := catalog.ClientRecord{
		NationalID: "5", Password: "pw",
		Loans: []catalog.LoanRecord{{ID: "L1", Installments: []catalog.InstallmentRecord{{Sequence: 3}, {Sequence: 1}, {Sequence: 2}}}},
	}
	c, err := catalog.Build([]catalog.ClientRecord{rec}, bcrypt.MinCost)
	require.NoError(t, err)

	p, err := c.Authenticate("5", "pw")
	require.NoError(t, err)
	for i, inst := range p.Loans[0].Installments {
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, domain.InstallmentPending, inst.Status)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Load(context.Context) ([]catalog.ClientRecord, error) {
	return nil, errors.New("boom")
}

func TestLoad_MergesSourcesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clients":[{"client_id":"X","national_id":"9","password":"p"}]}`), 0o600))

	recs, err := catalog.Load(context.Background(), catalog.EmbeddedSource{}, catalog.FileSource{Path: path})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "X", recs[3].ClientID)
}

func TestLoad_FailsWhenAnySourceFails(t *testing.T) {
	_, err := catalog.Load(context.Background(), catalog.EmbeddedSource{}, failingSource{})
	assert.ErrorContains(t, err, "catalog source failing")
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := catalog.Decode([]byte(`{"clients":[{"nationalId":"1"}]}`))
	assert.Error(t, err)
}
