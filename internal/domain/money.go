package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned when an operation would produce, or a
	// constructor would accept, a negative monetary amount.
	ErrNegativeAmount = errors.New("money amount cannot be negative")

	// ErrCurrencyMismatch is returned when two Money values of different
	// currencies are combined.
	ErrCurrencyMismatch = errors.New("money operands must share a currency")
)

// Money is an immutable amount in a single currency. There is no
// representation of negative money: constructors and arithmetic reject any
// result below zero. Every operation returns a new value.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney builds a Money value, rejecting negative amounts.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency.Code == "" {
		return Money{}, errors.New("money requires a currency")
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney is a convenience constructor for values known valid at compile
// time, such as test fixtures and seed data. It panics on invalid input.
func MustMoney(amount string, currency Currency) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns the sum of m and other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.Currency.Equals(other.Currency) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Subtract returns m minus other. Both operands must share a currency and
// the result must stay non-negative.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.Currency.Equals(other.Currency) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	result := m.Amount.Sub(other.Amount)
	if result.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

// IsGreaterThan reports whether m exceeds other. Both operands must share a
// currency.
func (m Money) IsGreaterThan(other Money) (bool, error) {
	if !m.Currency.Equals(other.Currency) {
		return false, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return m.Amount.GreaterThan(other.Amount), nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(int32(m.Currency.Scale)), m.Currency.Code)
}
