package conecta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// amountRegex is the only accepted textual form: digits, optional dot and at
// most two decimals. Thousands separators and commas are rejected.
var amountRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Amount is a non-negative monetary amount with two decimal places.
//
// The canonical text form ("10.00") is used both in the JSON body and in the
// signature input, so the two can never disagree. The zero value is 0.00.
type Amount struct {
	value decimal.Decimal
}

// NewAmount converts d into an Amount. Negative values and values with more
// than two decimal places return ErrInvalidAmount.
func NewAmount(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d.String())
	}
	if !d.Equal(d.Round(2)) {
		return Amount{}, fmt.Errorf("%w: more than two decimal places in %s", ErrInvalidAmount, d.String())
	}
	return Amount{value: d}, nil
}

// ParseAmount parses a decimal string such as "10", "10.5" or "10.50".
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if !amountRegex.MatchString(s) {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return NewAmount(d)
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromCents builds an Amount from an integer number of cents.
func AmountFromCents(cents int64) (Amount, error) {
	return NewAmount(decimal.New(cents, -2))
}

// String returns the canonical form with exactly two decimals.
func (a Amount) String() string {
	return a.value.StringFixed(2)
}

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

// Equal reports whether both amounts hold the same value.
func (a Amount) Equal(b Amount) bool {
	return a.value.Equal(b.value)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{value: a.value.Add(b.value)}
}

// MarshalJSON encodes the amount as a JSON string in canonical form.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string or number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
