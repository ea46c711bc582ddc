package domain

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// groupedAmount matches an amount written with comma thousands separators.
var groupedAmount = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// normalizeAmount trims blanks and drops comma thousands separators. The
// decimal mark is always a dot: a comma outside a three-digit group, as in
// "10,5", leaves the input unparseable.
func normalizeAmount(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if strings.Contains(s, ",") {
		if !groupedAmount.MatchString(s) {
			return "", false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return s, true
}

// ParseAmount parses a user-entered amount. Comma thousands separators and
// surrounding blanks are tolerated; anything non-numeric or not strictly
// positive is rejected as an invalid amount.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s, ok := normalizeAmount(raw)
	if !ok {
		return decimal.Zero, invalidAmount(field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidAmount(field)
	}
	if err := RequirePositive(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseSignedAmount parses an amount whose sign carries meaning, such as a
// card movement (negative for purchases, positive for refunds). Zero is rejected.
func ParseSignedAmount(field, raw string) (decimal.Decimal, error) {
	s, ok := normalizeAmount(raw)
	if !ok {
		return decimal.Zero, invalidAmount(field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidAmount(field)
	}
	if err := RequireNonZero(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// RequirePositive rejects zero and negative amounts.
func RequirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return invalidAmount(field)
	}
	return nil
}

// RequireNonZero rejects a zero amount; the sign is meaningful to the caller.
func RequireNonZero(field string, d decimal.Decimal) error {
	if d.IsZero() {
		return invalidAmount(field)
	}
	return nil
}

// AmountInput is an amount as typed by the user. It accepts both JSON numbers
// and strings so that non-numeric input reaches ParseAmount instead of failing
// body decoding.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = AmountInput(s)
		return nil
	}
	*a = AmountInput(strings.TrimSpace(string(b)))
	return nil
}
