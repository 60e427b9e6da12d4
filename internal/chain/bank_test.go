package chain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce00000000000000000000000000000000000")
	bob   = common.HexToAddress("0xb0b0000000000000000000000000000000000000")
	carol = common.HexToAddress("0xca20100000000000000000000000000000000000")
)

func TestBank_Deposit(t *testing.T) {
	bank := NewBank()

	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))
	require.NoError(t, bank.Deposit(alice, big.NewInt(50)))

	assert.Equal(t, int64(150), bank.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(bob).Int64())

	assert.ErrorIs(t, bank.Deposit(alice, big.NewInt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, bank.Deposit(alice, nil), ErrInvalidAmount)
}

func TestBank_BalanceOfReturnsCopy(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	bank.BalanceOf(alice).SetInt64(0)

	assert.Equal(t, int64(100), bank.BalanceOf(alice).Int64())
}

func TestJournal_TransferMovesFunds(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	journal := bank.Begin()
	require.NoError(t, journal.Transfer(alice, bob, big.NewInt(60)))
	journal.Commit()

	assert.Equal(t, int64(40), bank.BalanceOf(alice).Int64())
	assert.Equal(t, int64(60), bank.BalanceOf(bob).Int64())
}

func TestJournal_InsufficientFunds(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(10)))

	journal := bank.Begin()
	err := journal.Transfer(alice, bob, big.NewInt(11))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(10), bank.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(bob).Int64())
}

func TestJournal_RevertRestoresEveryMove(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	journal := bank.Begin()
	require.NoError(t, journal.Transfer(alice, bob, big.NewInt(30)))
	require.NoError(t, journal.Transfer(alice, carol, big.NewInt(20)))
	require.NoError(t, journal.Transfer(bob, carol, big.NewInt(10)))

	journal.Revert()

	assert.Equal(t, int64(100), bank.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(bob).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(carol).Int64())
}

func TestJournal_SealedAfterCommit(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	journal := bank.Begin()
	require.NoError(t, journal.Transfer(alice, bob, big.NewInt(10)))
	journal.Commit()

	assert.ErrorIs(t, journal.Transfer(alice, bob, big.NewInt(10)), ErrJournalSealed)
}

func TestJournal_HookFailureIsRevertable(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	hookErr := errors.New("payment rejected")
	bank.SetHook(carol, func(from common.Address, amount *big.Int) error {
		return hookErr
	})

	journal := bank.Begin()
	require.NoError(t, journal.Transfer(alice, bob, big.NewInt(30)))

	err := journal.Transfer(alice, carol, big.NewInt(20))
	require.ErrorIs(t, err, hookErr)

	journal.Revert()

	assert.Equal(t, int64(100), bank.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(bob).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(carol).Int64())
}

func TestJournal_HookSeesSettledBalance(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	var seen *big.Int
	bank.SetHook(bob, func(from common.Address, amount *big.Int) error {
		seen = bank.BalanceOf(bob)
		return nil
	})

	journal := bank.Begin()
	require.NoError(t, journal.Transfer(alice, bob, big.NewInt(25)))
	journal.Commit()

	require.NotNil(t, seen)
	assert.Equal(t, int64(25), seen.Int64())
}

func TestBank_SetHookNilClears(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Deposit(alice, big.NewInt(100)))

	bank.SetHook(bob, func(from common.Address, amount *big.Int) error {
		return errors.New("never")
	})
	bank.SetHook(bob, nil)

	journal := bank.Begin()
	assert.NoError(t, journal.Transfer(alice, bob, big.NewInt(10)))
	journal.Commit()
}
