// Package catalog holds the read-only client catalog used to authenticate
// and to seed each session's profile. It is built once at startup and never
// written back to.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type entry struct {
	profile      *domain.ClientProfile
	passwordHash []byte
}

// Catalog maps normalized national ids to client profiles.
type Catalog struct {
	entries map[string]entry
	// missHash is compared on unknown ids so a miss costs as much as a
	// wrong password.
	missHash []byte
}

// Build validates the records and hashes their passwords with the given
// bcrypt cost. Duplicate national ids are rejected.
func Build(records []ClientRecord, cost int) (*Catalog, error) {
	missHash, err := bcrypt.GenerateFromPassword([]byte("catalog-miss"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash miss sentinel: %w", err)
	}
	c := &Catalog{entries: make(map[string]entry, len(records)), missHash: missHash}
	for i := range records {
		rec := &records[i]
		profile, err := toProfile(rec)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", rec.NationalID, err)
		}
		key := NormalizeNationalID(rec.NationalID)
		if _, dup := c.entries[key]; dup {
			return nil, fmt.Errorf("duplicate national id %q", rec.NationalID)
		}
		if rec.Password == "" {
			return nil, fmt.Errorf("client %q: empty password", rec.NationalID)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("client %q: hash password: %w", rec.NationalID, err)
		}
		c.entries[key] = entry{profile: profile, passwordHash: hash}
	}
	return c, nil
}

// Len returns the number of clients in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Authenticate returns a private copy of the profile registered under
// nationalID when password matches.
func (c *Catalog) Authenticate(nationalID, password string) (*domain.ClientProfile, error) {
	e, ok := c.entries[NormalizeNationalID(nationalID)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(c.missHash, []byte(password))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword(e.passwordHash, []byte(password)); err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	return e.profile.Clone(), nil
}

// NormalizeNationalID strips separators and blanks so "1-0111-0111" and
// "101110111" name the same client.
func NormalizeNationalID(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, id)
}

func toProfile(rec *ClientRecord) (*domain.ClientProfile, error) {
	if NormalizeNationalID(rec.NationalID) == "" {
		return nil, fmt.Errorf("national id required")
	}
	clientType := domain.ClientType(rec.ClientType)
	if clientType == "" {
		clientType = domain.ClientIndividual
	}
	if clientType != domain.ClientIndividual && clientType != domain.ClientLegalEntity {
		return nil, fmt.Errorf("unknown client type %q", rec.ClientType)
	}

	p := &domain.ClientProfile{
		ClientID:      rec.ClientID,
		FullName:      rec.FullName,
		NationalID:    rec.NationalID,
		Address:       rec.Address,
		Phone:         rec.Phone,
		MonthlyIncome: rec.MonthlyIncome,
		ClientType:    clientType,
		Username:      rec.Username,
	}
	ids := map[string]bool{}
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s without id", kind)
		}
		if ids[id] {
			return fmt.Errorf("duplicate id %q", id)
		}
		ids[id] = true
		return nil
	}

	for _, ar := range rec.Accounts {
		if err := claim("account", ar.ID); err != nil {
			return nil, err
		}
		cur := domain.Currency(ar.Currency)
		if !cur.Valid() {
			return nil, fmt.Errorf("account %s: unknown currency %q", ar.ID, ar.Currency)
		}
		typ := domain.AccountType(ar.Type)
		if typ == "" {
			typ = domain.AccountDebit
		}
		if typ != domain.AccountDebit && typ != domain.AccountCredit {
			return nil, fmt.Errorf("account %s: unknown type %q", ar.ID, ar.Type)
		}
		movements := toMovements(ar.Movements)
		p.Accounts = append(p.Accounts, domain.Account{
			ID:             ar.ID,
			Currency:       cur,
			Type:           typ,
			Number:         ar.Number,
			Balance:        ar.Balance,
			IBAN:           ar.IBAN,
			OpeningBalance: ar.Balance.Sub(movements.Sum()),
			Movements:      movements,
		})
	}

	for _, cr := range rec.Cards.Credit {
		if err := claim("credit card", cr.ID); err != nil {
			return nil, err
		}
		if cr.LinkedAccountID != "" {
			if _, ok := p.Account(cr.LinkedAccountID); !ok {
				return nil, fmt.Errorf("credit card %s: linked account %q not found", cr.ID, cr.LinkedAccountID)
			}
		}
		p.Cards.Credit = append(p.Cards.Credit, domain.Card{
			ID:              cr.ID,
			Kind:            domain.CardCredit,
			Number:          cr.Number,
			Balance:         cr.Balance,
			LinkedAccountID: cr.LinkedAccountID,
			Credit: &domain.CreditTerms{
				Limit:          cr.Limit,
				ExpirationDate: cr.ExpirationDate,
				SecurityCode:   cr.SecurityCode,
			},
			Movements: toMovements(cr.Movements),
		})
	}

	for _, dr := range rec.Cards.Debit {
		if err := claim("debit card", dr.ID); err != nil {
			return nil, err
		}
		if _, ok := p.Account(dr.LinkedAccountID); !ok {
			return nil, fmt.Errorf("debit card %s: linked account %q not found", dr.ID, dr.LinkedAccountID)
		}
		p.Cards.Debit = append(p.Cards.Debit, domain.Card{
			ID:              dr.ID,
			Kind:            domain.CardDebit,
			Number:          dr.Number,
			Balance:         dr.Balance,
			LinkedAccountID: dr.LinkedAccountID,
			Movements:       toMovements(dr.Movements),
		})
	}
	p.SyncDebitCards()

	for _, lr := range rec.Loans {
		if err := claim("loan", lr.ID); err != nil {
			return nil, err
		}
		loan, err := toLoan(lr)
		if err != nil {
			return nil, err
		}
		p.Loans = append(p.Loans, loan)
	}
	return p, nil
}

func toLoan(lr LoanRecord) (domain.Loan, error) {
	loan := domain.Loan{
		ID:                 lr.ID,
		Principal:          lr.Principal,
		OutstandingBalance: lr.OutstandingBalance,
		InterestRate:       lr.InterestRate,
		StartDate:          lr.StartDate.Time,
	}
	if loan.OutstandingBalance.IsNegative() {
		return loan, fmt.Errorf("loan %s: negative outstanding balance", lr.ID)
	}
	seen := map[int]bool{}
	for _, ir := range lr.Installments {
		if seen[ir.Sequence] {
			return loan, fmt.Errorf("loan %s: duplicate installment %d", lr.ID, ir.Sequence)
		}
		seen[ir.Sequence] = true
		status := domain.InstallmentStatus(ir.Status)
		switch status {
		case "":
			status = domain.InstallmentPending
		case domain.InstallmentPending, domain.InstallmentPaid, domain.InstallmentOverdue:
		default:
			return loan, fmt.Errorf("loan %s: installment %d has unknown status %q", lr.ID, ir.Sequence, ir.Status)
		}
		loan.Installments = append(loan.Installments, domain.LoanInstallment{
			Sequence: ir.Sequence,
			DueDate:  ir.DueDate.Time,
			Amount:   ir.Amount,
			Status:   status,
		})
	}
	sort.Slice(loan.Installments, func(i, j int) bool {
		return loan.Installments[i].Sequence < loan.Installments[j].Sequence
	})
	return loan, nil
}

func toMovements(in []MovementRecord) domain.MovementLog {
	out := make(domain.MovementLog, 0, len(in))
	for _, m := range in {
		out = append(out, domain.MovementEntry{
			Date:        m.Date.Time,
			Description: m.Description,
			Amount:      m.Amount,
			Kind:        m.Kind,
		})
	}
	return out
}
