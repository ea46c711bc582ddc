package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Document is the on-disk / over-the-wire shape of a catalog.
type Document struct {
	Clients []ClientRecord `json:"clients"`
}

// ClientRecord mirrors a client profile plus its credentials.
type ClientRecord struct {
	ClientID      string          `json:"client_id"`
	FullName      string          `json:"full_name"`
	NationalID    string          `json:"national_id"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	ClientType    string          `json:"client_type"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	Accounts      []AccountRecord `json:"accounts"`
	Cards         struct {
		Credit []CreditCardRecord `json:"credit"`
		Debit  []DebitCardRecord  `json:"debit"`
	} `json:"cards"`
	Loans []LoanRecord `json:"loans"`
}

type AccountRecord struct {
	ID        string           `json:"id"`
	Currency  string           `json:"currency"`
	Type      string           `json:"type"`
	Number    string           `json:"number"`
	Balance   decimal.Decimal  `json:"balance"`
	IBAN      string           `json:"iban"`
	Movements []MovementRecord `json:"movements"`
}

type MovementRecord struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

type CreditCardRecord struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	Limit           decimal.Decimal  `json:"limit"`
	Balance         decimal.Decimal  `json:"balance"`
	ExpirationDate  string           `json:"expiration_date"`
	SecurityCode    string           `json:"security_code"`
	LinkedAccountID string           `json:"linked_account_id"`
	Movements       []MovementRecord `json:"movements"`
}

type DebitCardRecord struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	LinkedAccountID string           `json:"linked_account_id"`
	Balance         decimal.Decimal  `json:"balance"`
	Movements       []MovementRecord `json:"movements"`
}

type LoanRecord struct {
	ID                 string              `json:"id"`
	Principal          decimal.Decimal     `json:"principal"`
	OutstandingBalance decimal.Decimal     `json:"outstanding_balance"`
	InterestRate       decimal.Decimal     `json:"interest_rate"`
	StartDate          Date                `json:"start_date"`
	Installments       []InstallmentRecord `json:"installments"`
}

type InstallmentRecord struct {
	Sequence int             `json:"sequence"`
	DueDate  Date            `json:"due_date"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(domain.DateLayout))
}
