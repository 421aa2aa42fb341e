package domain

import (
	"errors"
	"strings"
)

// Currency identifies a monetary denomination. Two currencies are the same
// denomination iff their codes match; DisplayName and Scale are descriptive.
type Currency struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Scale       int    `json:"scale"`
}

// NewCurrency builds a Currency, normalizing the code to uppercase.
func NewCurrency(code, displayName string, scale int) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Currency{}, errors.New("currency code cannot be empty")
	}
	if scale < 0 {
		return Currency{}, errors.New("currency scale cannot be negative")
	}
	return Currency{Code: code, DisplayName: displayName, Scale: scale}, nil
}

// Equals compares by code only.
func (c Currency) Equals(other Currency) bool {
	return c.Code == other.Code
}

func (c Currency) String() string {
	return c.Code
}
