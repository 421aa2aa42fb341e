package app

import (
	"errors"
	"testing"

	"github.com/bankva/transfer-engine/internal/domain"
)

var (
	testUSD = domain.Currency{Code: "USD", DisplayName: "US Dollar", Scale: 2}
	testEUR = domain.Currency{Code: "EUR", DisplayName: "Euro", Scale: 2}
)

func activeAccount(t *testing.T, number, balance string, currency domain.Currency) *domain.Account {
	t.Helper()
	acct, err := domain.NewAccount(domain.AccountNumber(number), domain.MustMoney(balance, currency))
	if err != nil {
		t.Fatalf("failed to build account fixture: %v", err)
	}
	return acct
}

func ruleCode(t *testing.T, err error) domain.RuleCode {
	t.Helper()
	var ruleErr *domain.RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected a rule error, got %v", err)
	}
	return ruleErr.Code
}

func TestValidate_AllowsValidTransfer(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)

	if err := v.Validate(from, to, domain.MustMoney("50.00", testUSD)); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidate_InactiveSource(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	from.BlockAccount()
	to := activeAccount(t, "ACC-002", "50.00", testUSD)

	err := v.Validate(from, to, domain.MustMoney("10.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeInactiveAccount {
		t.Fatalf("expected INACTIVE_ACCOUNT, got %s", code)
	}
}

func TestValidate_InactiveTarget(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)
	to.CloseAccount()

	err := v.Validate(from, to, domain.MustMoney("10.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeInactiveAccount {
		t.Fatalf("expected INACTIVE_ACCOUNT, got %s", code)
	}
}

func TestValidate_SourceCurrencyMismatch(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testEUR)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)

	err := v.Validate(from, to, domain.MustMoney("10.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeCurrencyMismatch {
		t.Fatalf("expected CURRENCY_MISMATCH, got %s", code)
	}
}

func TestValidate_TargetCurrencyMismatch(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testEUR)

	err := v.Validate(from, to, domain.MustMoney("10.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeCurrencyMismatch {
		t.Fatalf("expected CURRENCY_MISMATCH, got %s", code)
	}
}

func TestValidate_InsufficientFunds(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)

	err := v.Validate(from, to, domain.MustMoney("150.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %s", code)
	}
}

func TestValidate_ZeroAmountIsInvalid(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)

	err := v.Validate(from, to, domain.MustMoney("0", testUSD))
	if code := ruleCode(t, err); code != domain.CodeInvalidAmount {
		t.Fatalf("expected INVALID_AMOUNT, got %s", code)
	}
}

func TestValidate_SourceProblemsReportedBeforeTargetProblems(t *testing.T) {
	v := TransferValidator{}
	// Both sides are broken: the source has too little money and the target
	// is closed. The withdrawal check runs first, so the source-side code wins.
	from := activeAccount(t, "ACC-001", "10.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)
	to.CloseAccount()

	err := v.Validate(from, to, domain.MustMoney("150.00", testUSD))
	if code := ruleCode(t, err); code != domain.CodeInsufficientFunds {
		t.Fatalf("expected the source-side INSUFFICIENT_FUNDS first, got %s", code)
	}
}

func TestValidate_IsIdempotent(t *testing.T) {
	v := TransferValidator{}
	from := activeAccount(t, "ACC-001", "100.00", testUSD)
	to := activeAccount(t, "ACC-002", "50.00", testUSD)
	amount := domain.MustMoney("150.00", testUSD)

	for i := 0; i < 5; i++ {
		err := v.Validate(from, to, amount)
		if code := ruleCode(t, err); code != domain.CodeInsufficientFunds {
			t.Fatalf("run %d: expected INSUFFICIENT_FUNDS, got %s", i, code)
		}
	}
	if got := from.Balance.String(); got != "100.00 USD" {
		t.Fatalf("validator must not mutate accounts, balance now %s", got)
	}
}
