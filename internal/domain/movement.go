package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Movement kinds produced by the engine itself. Transfers use the caller's memo.
const (
	KindLoan        = "prestamo"
	KindCardPayment = "pago"
)

// MovementEntry is one dated ledger line. Amount is signed: positive credits
// the holder, negative debits it. Entries are never edited after append.
type MovementEntry struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

// MovementLog is an append-only, insertion-ordered list of entries.
type MovementLog []MovementEntry

// Sum returns the net of all amounts in the log.
func (l MovementLog) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, m := range l {
		total = total.Add(m.Amount)
	}
	return total
}

// Between returns the entries dated within [from, to]. A zero bound is open.
func (l MovementLog) Between(from, to time.Time) MovementLog {
	out := make(MovementLog, 0, len(l))
	for _, m := range l {
		day := Today(m.Date)
		if !from.IsZero() && day.Before(Today(from)) {
			continue
		}
		if !to.IsZero() && day.After(Today(to)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Today truncates t to its calendar date, read in t's own zone and returned
// as UTC midnight. Every ledger date is stored this way so dates compare by
// calendar day whatever zone the clock runs in.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return Today(t), nil
}

func (l MovementLog) clone() MovementLog {
	if l == nil {
		return nil
	}
	return append(make(MovementLog, 0, len(l)), l...)
}
