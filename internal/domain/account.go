package domain

import "errors"

// AccountNumber is the unique identity of an account.
type AccountNumber string

// AccountStatus is the lifecycle state of an account. The lifecycle is
// one-way: an account never returns to ACTIVE once blocked or closed.
type AccountStatus string

const (
	StatusActive  AccountStatus = "ACTIVE"
	StatusBlocked AccountStatus = "BLOCKED"
	StatusClose   AccountStatus = "CLOSE"
)

// Account is the aggregate holding a balance and a lifecycle status.
// Identity and equality are by account number only. The entity itself does
// not gate Deposit/Withdraw on status; callers run the transfer validator
// first.
//
// Version is the optimistic-concurrency counter: the store refuses to save
// an account whose persisted version has moved since it was loaded.
type Account struct {
	AccountNumber AccountNumber `json:"account_number"`
	Balance       Money         `json:"balance"`
	Status        AccountStatus `json:"status"`
	Version       int64         `json:"version"`
}

// NewAccount creates an ACTIVE account with a non-negative opening balance.
func NewAccount(number AccountNumber, openingBalance Money) (*Account, error) {
	if number == "" {
		return nil, errors.New("account number cannot be empty")
	}
	return &Account{
		AccountNumber: number,
		Balance:       openingBalance,
		Status:        StatusActive,
	}, nil
}

// IsActive reports whether the account accepts transfers.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// BlockAccount moves the account to BLOCKED unconditionally.
func (a *Account) BlockAccount() {
	a.Status = StatusBlocked
}

// CloseAccount moves the account to CLOSE unconditionally.
func (a *Account) CloseAccount() {
	a.Status = StatusClose
}

// Deposit adds amount to the balance. Status is not checked here.
func (a *Account) Deposit(amount Money) error {
	balance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = balance
	return nil
}

// Withdraw subtracts amount from the balance. It fails if the balance would
// go negative; sufficiency and status must be pre-validated by the caller.
func (a *Account) Withdraw(amount Money) error {
	balance, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = balance
	return nil
}

// Equals compares accounts by account number only.
func (a *Account) Equals(other *Account) bool {
	if other == nil {
		return false
	}
	return a.AccountNumber == other.AccountNumber
}
