package app

import (
	"fmt"

	"github.com/bankva/transfer-engine/internal/domain"
)

// TransferValidator checks withdrawal and deposit preconditions before any
// balance is touched. It is stateless: the same accounts and amount always
// yield the same decision. The order is fixed — source-side problems are
// reported before target-side problems when both exist.
type TransferValidator struct{}

// Validate runs the withdrawal check on the source account, then the deposit
// check on the target account. It returns a *domain.RuleError on the first
// violated rule and nil when the transfer may proceed.
func (v TransferValidator) Validate(from, to *domain.Account, amount domain.Money) error {
	if err := v.checkWithdrawal(from, amount); err != nil {
		return err
	}
	return v.checkDeposit(to, amount)
}

func (v TransferValidator) checkWithdrawal(source *domain.Account, amount domain.Money) error {
	if !source.IsActive() {
		return domain.NewRuleError(domain.CodeInactiveAccount,
			fmt.Sprintf("source account %s is not active", source.AccountNumber))
	}
	if !source.Balance.Currency.Equals(amount.Currency) {
		return domain.NewRuleError(domain.CodeCurrencyMismatch,
			fmt.Sprintf("source account %s holds %s but transfer is in %s",
				source.AccountNumber, source.Balance.Currency, amount.Currency))
	}
	if source.Balance.Amount.LessThan(amount.Amount) {
		return domain.NewRuleError(domain.CodeInsufficientFunds,
			fmt.Sprintf("source account %s balance %s is below transfer amount %s",
				source.AccountNumber, source.Balance, amount))
	}
	return nil
}

func (v TransferValidator) checkDeposit(target *domain.Account, amount domain.Money) error {
	if !target.IsActive() {
		return domain.NewRuleError(domain.CodeInactiveAccount,
			fmt.Sprintf("target account %s is not active", target.AccountNumber))
	}
	if !target.Balance.Currency.Equals(amount.Currency) {
		return domain.NewRuleError(domain.CodeCurrencyMismatch,
			fmt.Sprintf("target account %s holds %s but transfer is in %s",
				target.AccountNumber, target.Balance.Currency, amount.Currency))
	}
	if !amount.IsPositive() {
		return domain.NewRuleError(domain.CodeInvalidAmount,
			fmt.Sprintf("transfer amount %s must be positive", amount))
	}
	return nil
}
