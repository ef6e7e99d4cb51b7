package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is what a zero Money and a scanned column amount are in
const DefaultCurrency = INR

var (
	currencySymbols = map[Currency]string{INR: "₹", USD: "$", EUR: "€"}
	hundred         = decimal.NewFromInt(100)
)

// Money is an immutable amount in one currency. The zero value is 0 INR.
// Prices, totals and reductions are stored with two decimals and the payment
// provider works in minor units (paise).
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

func NewMoneyINR(amount decimal.Decimal) Money { return Money{amount: amount, currency: INR} }
func NewMoneyINRFromInt(rupees int64) Money    { return NewMoneyINR(decimal.NewFromInt(rupees)) }
func Zero(currency Currency) Money             { return Money{amount: decimal.Zero, currency: currency} }
func ZeroINR() Money                           { return Zero(INR) }

// NewMoneyFromMinorUnits converts a provider amount in paise (or cents)
func NewMoneyFromMinorUnits(units int64, currency Currency) Money {
	return Money{amount: decimal.New(units, -2), currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.Currency()}
}

func (m Money) sameCurrency(op string, other Money) error {
	if m.Currency() != other.Currency() {
		return fmt.Errorf("cannot %s %s and %s amounts", op, m.Currency(), other.Currency())
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(other.amount)), nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(other.amount)), nil
}

// MustAdd panics on a currency mismatch. Cart and order lines are always
// priced in one currency, so a mismatch there is a programming error.
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

func (m Money) MustSubtract(other Money) Money {
	diff, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return diff
}

// MultiplyByInt prices a line: unit price times quantity
func (m Money) MultiplyByInt(factor int64) Money {
	return m.with(m.amount.Mul(decimal.NewFromInt(factor)))
}

// Percent returns pct percent of m, unrounded
func (m Money) Percent(pct decimal.Decimal) Money {
	return m.with(m.amount.Mul(pct).Div(hundred))
}

// Min compares amounts only; callers keep both sides in one currency
func (m Money) Min(other Money) Money {
	if other.amount.LessThan(m.amount) {
		return m.with(other.amount)
	}
	return m
}

func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool    { return m.amount.LessThan(other.amount) }
func (m Money) GreaterThan(other Money) bool { return m.amount.GreaterThan(other.amount) }

// MinorUnits is the amount in paise (or cents), rounded half up
func (m Money) MinorUnits() int64 {
	return m.amount.Mul(hundred).Round(0).IntPart()
}

func (m Money) StringFixed(places int32) string { return m.amount.StringFixed(places) }

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.Currency())
}

// Display renders amounts for customer messages: "₹200" for whole amounts,
// "₹99.50" otherwise.
func (m Money) Display() string {
	symbol, ok := currencySymbols[m.Currency()]
	if !ok {
		symbol = string(m.Currency()) + " "
	}
	if m.amount.IsInteger() {
		return symbol + m.amount.Truncate(0).String()
	}
	return symbol + m.amount.StringFixed(2)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(2), Currency: m.Currency()})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", v.Amount, err)
	}
	*m = Money{amount: amount, currency: v.Currency}
	return nil
}

// Value stores the amount alone; the currency is implied by DefaultCurrency
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads a numeric column. NULL scans as zero.
func (m *Money) Scan(value any) error {
	var amount decimal.Decimal
	switch v := value.(type) {
	case nil:
		amount = decimal.Zero
	case int64:
		amount = decimal.NewFromInt(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	case string, []byte:
		var s string
		if b, ok := v.([]byte); ok {
			s = string(b)
		} else {
			s = v.(string)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("scan money %q: %w", s, err)
		}
		amount = d
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
