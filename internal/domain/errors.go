package domain

import "fmt"

// RuleCode names a business-rule violation. The set is closed; callers map
// codes to user-facing statuses outside this module.
type RuleCode string

const (
	CodeInactiveAccount   RuleCode = "INACTIVE_ACCOUNT"
	CodeCurrencyMismatch  RuleCode = "CURRENCY_MISMATCH"
	CodeInsufficientFunds RuleCode = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount     RuleCode = "INVALID_AMOUNT"
)

// RuleError is a business-rule violation raised by policy checks before any
// mutation. It is safe for the caller to correct the condition and retry the
// whole operation.
type RuleError struct {
	Code    RuleCode
	Message string
}

func NewRuleError(code RuleCode, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
