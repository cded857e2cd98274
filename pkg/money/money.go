// Package money provides currency-safe arithmetic for expense amounts using
// integer minor units. It wraps go-money for safe arithmetic and
// shopspring/decimal for precise conversions, with BDT as the home currency.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes the assistant recognizes in chat (ISO-4217).
const (
	BDT = "BDT" // Bangladeshi Taka, default for bare amounts
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	INR = "INR"
)

// Money is a monetary value with currency, stored as minor units.
type Money struct {
	m *money.Money
}

// New creates Money from minor units (poisha/cents) and a currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, currencyCode)}
}

// NewFromFloat converts a parsed chat amount (major units) to Money using
// decimal arithmetic, so 12.50 becomes exactly 1250 minor units.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(BDT)
	}
	d := decimal.NewFromFloat(amount)
	minor := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(minor, currency.Code)
}

// NewFromString parses a display amount like "1,234.56".
func NewFromString(amount, currencyCode string) (*Money, error) {
	amount = strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(BDT)
	}
	minor := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(minor, currency.Code), nil
}

// Zero returns a zero value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add sums two values; errors when currencies differ.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract returns m minus other; errors when currencies differ. The
// correction flow uses this for the signed delta applied to user totals.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(BDT), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// SameCurrency reports whether both values share a currency.
func (m *Money) SameCurrency(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	return m.m.SameCurrency(other.m)
}

// Display formats for chat replies, e.g. "৳1,234.50".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return money.New(0, BDT).Display()
	}
	return m.m.Display()
}

// String returns the plain decimal amount, e.g. "1234.50".
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(2)
}

// ToDecimal converts to major units for precise aggregation.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	d := decimal.NewFromInt(m.m.Amount())
	return d.Div(decimal.New(1, int32(m.m.Currency().Fraction)))
}

// MarshalJSON emits {"amount": minor, "currency": code, "display": "..."}.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]any{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

// UnmarshalJSON accepts the shape MarshalJSON produces.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = BDT
	}
	m.m = money.New(v.Amount, v.Currency)
	return nil
}

// Scan reads a minor-unit integer column. Currency is stored separately and
// restored by the repository.
func (m *Money) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.m = nil
		return nil
	case int64:
		m.m = money.New(v, BDT)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

// Value writes the minor-unit integer for SQL.
func (m *Money) Value() (driver.Value, error) {
	if m == nil || m.m == nil {
		return nil, nil
	}
	return m.Amount(), nil
}

// NormalizeCurrencyMarker maps a chat currency marker to an ISO code.
// Unrecognized markers fall back to BDT, the assistant's home currency.
func NormalizeCurrencyMarker(marker string) string {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "$", "usd":
		return USD
	case "€", "eur":
		return EUR
	case "£", "gbp":
		return GBP
	case "₹", "inr":
		return INR
	default:
		return BDT
	}
}
