package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrJournalSealed     = errors.New("journal sealed")
)

// TransferHook runs after funds land on the account it is registered for.
// Returning an error fails the transfer, mirroring a payable target that
// rejects the payment. Hooks execute synchronously on the caller's goroutine
// and may call back into contract code.
type TransferHook func(from common.Address, amount *big.Int) error

// Bank holds the native balances of every account in the engine. Callers
// serialize access; the engine executes one operation at a time.
type Bank struct {
	balances map[common.Address]*big.Int
	hooks    map[common.Address]TransferHook
}

func NewBank() *Bank {
	return &Bank{
		balances: map[common.Address]*big.Int{},
		hooks:    map[common.Address]TransferHook{},
	}
}

func (b *Bank) Deposit(account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == -1 {
		return ErrInvalidAmount
	}
	b.balances[account] = new(big.Int).Add(b.balanceOf(account), amount)

	return nil
}

// BalanceOf returns a copy; mutating it does not touch the ledger.
func (b *Bank) BalanceOf(account common.Address) *big.Int {
	return new(big.Int).Set(b.balanceOf(account))
}

func (b *Bank) SetHook(account common.Address, hook TransferHook) {
	if hook == nil {
		delete(b.hooks, account)
		return
	}
	b.hooks[account] = hook
}

// Begin opens a transfer group. Every transfer in the group either commits
// together or is rolled back together via Revert.
func (b *Bank) Begin() *Journal {
	return &Journal{bank: b}
}

func (b *Bank) balanceOf(account common.Address) *big.Int {
	if balance, exists := b.balances[account]; exists {
		return balance
	}

	return new(big.Int)
}

type move struct {
	from   common.Address
	to     common.Address
	amount *big.Int
}

type Journal struct {
	bank   *Bank
	moves  []move
	sealed bool
}

// Transfer moves amount from one account to another and records the move so
// it can be undone. The recipient's hook runs after the balances settle; a
// hook failure fails the transfer but leaves the move recorded, so Revert
// still restores every balance.
func (j *Journal) Transfer(from, to common.Address, amount *big.Int) error {
	if j.sealed {
		return ErrJournalSealed
	}
	if amount == nil || amount.Sign() == -1 {
		return ErrInvalidAmount
	}
	if j.bank.balanceOf(from).Cmp(amount) == -1 {
		return ErrInsufficientFunds
	}

	j.bank.balances[from] = new(big.Int).Sub(j.bank.balanceOf(from), amount)
	j.bank.balances[to] = new(big.Int).Add(j.bank.balanceOf(to), amount)
	j.moves = append(j.moves, move{from: from, to: to, amount: new(big.Int).Set(amount)})

	zap.L().With(
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
	).Debug("Bank: Transfer")

	if hook, exists := j.bank.hooks[to]; exists {
		if err := hook(from, amount); err != nil {
			return err
		}
	}

	return nil
}

// Revert undoes every recorded move, most recent first, and seals the journal.
func (j *Journal) Revert() {
	for i := len(j.moves) - 1; i >= 0; i-- {
		m := j.moves[i]
		j.bank.balances[m.to] = new(big.Int).Sub(j.bank.balanceOf(m.to), m.amount)
		j.bank.balances[m.from] = new(big.Int).Add(j.bank.balanceOf(m.from), m.amount)
	}

	zap.L().With(zap.Int("moves", len(j.moves))).Warn("Bank: Journal reverted")

	j.moves = nil
	j.sealed = true
}

// Commit seals the journal, keeping every recorded move.
func (j *Journal) Commit() {
	j.moves = nil
	j.sealed = true
}
