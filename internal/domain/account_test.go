package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_StartsActive(t *testing.T) {
	acct, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)

	assert.True(t, acct.IsActive())
	assert.Equal(t, StatusActive, acct.Status)
	assert.EqualValues(t, 0, acct.Version)
}

func TestNewAccount_RejectsEmptyNumber(t *testing.T) {
	_, err := NewAccount("", MustMoney("0", usd(t)))
	assert.Error(t, err)
}

func TestAccount_LifecycleIsOneWay(t *testing.T) {
	acct, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)

	acct.BlockAccount()
	assert.Equal(t, StatusBlocked, acct.Status)
	assert.False(t, acct.IsActive())

	acct.CloseAccount()
	assert.Equal(t, StatusClose, acct.Status)
	assert.False(t, acct.IsActive())
}

func TestAccount_DepositAndWithdraw(t *testing.T) {
	acct, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)

	require.NoError(t, acct.Deposit(MustMoney("25.00", usd(t))))
	assert.Equal(t, "125.00 USD", acct.Balance.String())

	require.NoError(t, acct.Withdraw(MustMoney("125.00", usd(t))))
	assert.True(t, acct.Balance.Amount.IsZero())
}

func TestAccount_WithdrawFailsOnOverdraw(t *testing.T) {
	acct, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)

	err = acct.Withdraw(MustMoney("100.01", usd(t)))
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, "100.00 USD", acct.Balance.String(), "failed withdrawal must not change the balance")
}

func TestAccount_DepositDoesNotGateOnStatus(t *testing.T) {
	// Status checks belong to the transfer validator, not the entity.
	acct, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)
	acct.BlockAccount()

	require.NoError(t, acct.Deposit(MustMoney("1.00", usd(t))))
	assert.Equal(t, "101.00 USD", acct.Balance.String())
}

func TestAccount_EqualityIsByNumberOnly(t *testing.T) {
	a, err := NewAccount("ACC-001", MustMoney("100.00", usd(t)))
	require.NoError(t, err)
	b, err := NewAccount("ACC-001", MustMoney("999.00", eur(t)))
	require.NoError(t, err)
	c, err := NewAccount("ACC-002", MustMoney("100.00", usd(t)))
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}
