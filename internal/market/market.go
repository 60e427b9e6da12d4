package market

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidState         = errors.New("invalid state")
	ErrItemUnavailable      = errors.New("item unavailable")
	ErrCollectionNotAllowed = errors.New("collection not allowed")
	ErrInsufficientPayment  = errors.New("insufficient payment")
	ErrTransferFailed       = errors.New("transfer failed")
	ErrPaused               = errors.New("marketplace paused")
	ErrNotPaused            = errors.New("marketplace not paused")
)

// Marketplace is the settlement and access-control state machine: the item
// ledger, the collection allowlist, the purchase engine and the pause/guard
// discipline, all behind one reentrancy latch.
type Marketplace struct {
	address       common.Address
	registry      *registry.Registry
	bank          *chain.Bank
	feed          oracle.PriceFeed
	resolver      Resolver
	feeAccount    common.Address
	scalingFactor *big.Int
	allowAll      bool
	paused        bool
	guard         chain.Guard
	seq           uint64

	itemCount   uint64
	items       map[uint64]*Item
	sellerItems map[common.Address][]uint64
	buyerItems  map[common.Address][]uint64

	registrations map[common.Address]*Registration
	collections   []common.Address
	collectionIdx map[common.Address]int
}

// Item is one ledger entry. The itemId is unique and never reused; sold
// items stay in the ledger forever.
type Item struct {
	ItemId     uint64
	Collection common.Address
	TokenId    uint64
	Price      *big.Int
	Seller     common.Address
	Buyer      common.Address
	Sold       bool
	Active     bool
	ListedAt   time.Time
	UpdatedAt  time.Time
}

// Registration is the marketplace-side entry for a third-party collection:
// its fee schedule and active flag.
type Registration struct {
	Address      common.Address
	FeeBps       uint64
	Active       bool
	RegisteredAt time.Time
}

func New(
	address common.Address,
	reg *registry.Registry,
	bank *chain.Bank,
	feed oracle.PriceFeed,
	resolver Resolver,
	feeAccount common.Address,
	scalingFactor *big.Int,
) (*Marketplace, error) {
	if address == (common.Address{}) || feeAccount == (common.Address{}) {
		return nil, fmt.Errorf("zero address: %w", ErrInvalidInput)
	}
	if reg == nil || bank == nil || feed == nil || resolver == nil {
		return nil, fmt.Errorf("missing dependency: %w", ErrInvalidInput)
	}
	if scalingFactor == nil || scalingFactor.Sign() != 1 {
		return nil, fmt.Errorf("scaling factor must be positive: %w", ErrInvalidInput)
	}

	return &Marketplace{
		address:       address,
		registry:      reg,
		bank:          bank,
		feed:          feed,
		resolver:      resolver,
		feeAccount:    feeAccount,
		scalingFactor: new(big.Int).Set(scalingFactor),
		items:         map[uint64]*Item{},
		sellerItems:   map[common.Address][]uint64{},
		buyerItems:    map[common.Address][]uint64{},
		registrations: map[common.Address]*Registration{},
		collectionIdx: map[common.Address]int{},
	}, nil
}

func (m *Marketplace) Address() common.Address {
	return m.address
}

func (m *Marketplace) FeeAccount() common.Address {
	return m.feeAccount
}

func (m *Marketplace) AllowAll() bool {
	return m.allowAll
}

func (m *Marketplace) Paused() bool {
	return m.paused
}

// Balance is the marketplace's own bank balance, grown by retained
// overpayments.
func (m *Marketplace) Balance() *big.Int {
	return m.bank.BalanceOf(m.address)
}

// Pause stops every state-mutating entry point except Unpause and
// EmergencyWithdraw. Root admin only.
func (m *Marketplace) Pause(caller common.Address) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("pause requires root admin: %w", ErrUnauthorized)
	}
	if m.paused {
		return fmt.Errorf("already paused: %w", ErrPaused)
	}

	m.paused = true
	zap.L().With(zap.String("caller", caller.Hex())).Warn("Market: Paused")

	return nil
}

func (m *Marketplace) Unpause(caller common.Address) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("unpause requires root admin: %w", ErrUnauthorized)
	}
	if !m.paused {
		return fmt.Errorf("not paused: %w", ErrNotPaused)
	}

	m.paused = false
	zap.L().With(zap.String("caller", caller.Hex())).Warn("Market: Unpaused")

	return nil
}

// EmergencyWithdraw sweeps the marketplace's retained balance to the fee
// account. Root admin only; deliberately not gated by pause.
func (m *Marketplace) EmergencyWithdraw(caller common.Address) (*big.Int, error) {
	if err := m.guard.Enter(); err != nil {
		return nil, err
	}
	defer m.guard.Exit()

	if !m.registry.IsRootAdmin(caller) {
		return nil, fmt.Errorf("emergency withdraw requires root admin: %w", ErrUnauthorized)
	}

	amount := m.bank.BalanceOf(m.address)

	journal := m.bank.Begin()
	if err := journal.Transfer(m.address, m.feeAccount, amount); err != nil {
		journal.Revert()
		zap.L().With(zap.Error(err)).Error("Market: Emergency withdraw failed")
		return nil, fmt.Errorf("withdraw to fee account failed: %w", ErrTransferFailed)
	}
	journal.Commit()

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("feeAccount", m.feeAccount.Hex()),
		zap.String("amount", amount.String()),
	).Warn("Market: EmergencyWithdraw")

	return amount, nil
}

// SetFeeAccount changes where the platform fee and withdrawals land. Every
// configuration change logs the old and new values.
func (m *Marketplace) SetFeeAccount(caller, feeAccount common.Address) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set fee account: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set fee account requires root admin: %w", ErrUnauthorized)
	}
	if feeAccount == (common.Address{}) {
		return fmt.Errorf("zero fee account: %w", ErrInvalidInput)
	}

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("old", m.feeAccount.Hex()),
		zap.String("new", feeAccount.Hex()),
	).Info("Market: SetFeeAccount")

	m.feeAccount = feeAccount

	return nil
}

// SetRegistry swaps the roles contract the marketplace consults. The caller
// must be root admin on the current registry.
func (m *Marketplace) SetRegistry(caller common.Address, reg *registry.Registry) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set registry: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set registry requires root admin: %w", ErrUnauthorized)
	}
	if reg == nil {
		return fmt.Errorf("nil registry: %w", ErrInvalidInput)
	}

	zap.L().With(zap.String("caller", caller.Hex())).Info("Market: SetRegistry")

	m.registry = reg

	return nil
}

// SetAllowAll toggles the global bypass of the collection allowlist.
func (m *Marketplace) SetAllowAll(caller common.Address, allowAll bool) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set allow all: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set allow all requires root admin: %w", ErrUnauthorized)
	}

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.Bool("old", m.allowAll),
		zap.Bool("new", allowAll),
	).Info("Market: SetAllowAll")

	m.allowAll = allowAll

	return nil
}

// RegisterCollection creates the fee-schedule entry for a third-party
// collection, activates it and grants the allowed-collections role in one
// step. Root admin only.
func (m *Marketplace) RegisterCollection(caller, address common.Address, feeBps uint64) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("register collection: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("register collection requires root admin: %w", ErrUnauthorized)
	}
	if address == (common.Address{}) {
		return fmt.Errorf("zero collection address: %w", ErrInvalidInput)
	}
	if !units.ValidBps(feeBps) {
		return fmt.Errorf("fee bps %d out of range: %w", feeBps, ErrInvalidInput)
	}
	if _, exists := m.registrations[address]; exists {
		return fmt.Errorf("collection %s already registered: %w", address.Hex(), ErrInvalidState)
	}

	if err := m.registry.Grant(caller, registry.AllowedCollectionsRole, address); err != nil {
		return err
	}

	registration := &Registration{
		Address:      address,
		FeeBps:       feeBps,
		Active:       true,
		RegisteredAt: time.Now(),
	}
	m.registrations[address] = registration
	m.collectionIdx[address] = len(m.collections)
	m.collections = append(m.collections, address)

	event.EmitEvent(event.CollectionRegisteredEvent, CollectionReceipt{
		Registration: *registration,
		Seq:          m.nextSeq(),
	})

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("collection", address.Hex()),
		zap.Uint64("feeBps", feeBps),
	).Info("Market: RegisterCollection")

	return nil
}

// DeregisterCollection removes the entry and revokes the role. The index
// array swap-remove is keyed by the marketplace's own index map, never by a
// caller-supplied position.
func (m *Marketplace) DeregisterCollection(caller, address common.Address) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("deregister collection: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("deregister collection requires root admin: %w", ErrUnauthorized)
	}

	registration, exists := m.registrations[address]
	if !exists {
		return fmt.Errorf("collection %s is not registered: %w", address.Hex(), ErrInvalidInput)
	}

	if err := m.registry.Revoke(caller, registry.AllowedCollectionsRole, address); err != nil {
		return err
	}

	position := m.collectionIdx[address]
	last := len(m.collections) - 1
	if position != last {
		moved := m.collections[last]
		m.collections[position] = moved
		m.collectionIdx[moved] = position
	}
	m.collections = m.collections[:last]
	delete(m.collectionIdx, address)
	delete(m.registrations, address)

	event.EmitEvent(event.CollectionDeregisteredEvent, CollectionReceipt{
		Registration: *registration,
		Removed:      true,
		Seq:          m.nextSeq(),
	})

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("collection", address.Hex()),
	).Info("Market: DeregisterCollection")

	return nil
}

func (m *Marketplace) SetCollectionActive(caller, address common.Address, active bool) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set collection active: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set collection active requires root admin: %w", ErrUnauthorized)
	}

	registration, exists := m.registrations[address]
	if !exists {
		return fmt.Errorf("collection %s is not registered: %w", address.Hex(), ErrInvalidInput)
	}

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("collection", address.Hex()),
		zap.Bool("old", registration.Active),
		zap.Bool("new", active),
	).Info("Market: SetCollectionActive")

	registration.Active = active

	event.EmitEvent(event.CollectionUpdatedEvent, CollectionReceipt{
		Registration: *registration,
		Seq:          m.nextSeq(),
	})

	return nil
}

func (m *Marketplace) SetCollectionFee(caller, address common.Address, feeBps uint64) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set collection fee: %w", ErrPaused)
	}
	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set collection fee requires root admin: %w", ErrUnauthorized)
	}
	if !units.ValidBps(feeBps) {
		return fmt.Errorf("fee bps %d out of range: %w", feeBps, ErrInvalidInput)
	}

	registration, exists := m.registrations[address]
	if !exists {
		return fmt.Errorf("collection %s is not registered: %w", address.Hex(), ErrInvalidInput)
	}

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("collection", address.Hex()),
		zap.Uint64("old", registration.FeeBps),
		zap.Uint64("new", feeBps),
	).Info("Market: SetCollectionFee")

	registration.FeeBps = feeBps

	event.EmitEvent(event.CollectionUpdatedEvent, CollectionReceipt{
		Registration: *registration,
		Seq:          m.nextSeq(),
	})

	return nil
}

// IsAllowed applies the allowlist policy: the global allow-all flag, then
// the first-party self-declaration, then an active registration combined
// with the allowed-collections role.
func (m *Marketplace) IsAllowed(address common.Address) bool {
	_, err := m.allowedCollection(address)

	return err == nil
}

// Collections lists registrations in registration order.
func (m *Marketplace) Collections() []Registration {
	registrations := make([]Registration, 0, len(m.collections))
	for _, address := range m.collections {
		registrations = append(registrations, *m.registrations[address])
	}

	return registrations
}

func (m *Marketplace) CollectionRegistration(address common.Address) (Registration, error) {
	registration, exists := m.registrations[address]
	if !exists {
		return Registration{}, fmt.Errorf("collection %s is not registered: %w", address.Hex(), ErrInvalidInput)
	}

	return *registration, nil
}

func (m *Marketplace) allowedCollection(address common.Address) (Collection, error) {
	c, exists := m.resolver.Get(address)
	if !exists {
		return nil, fmt.Errorf("collection %s is not resolvable: %w", address.Hex(), ErrCollectionNotAllowed)
	}

	if m.allowAll {
		return c, nil
	}

	if declarer, ok := c.(FirstPartyDeclarer); ok && declarer.FirstParty() {
		return c, nil
	}

	registration, registered := m.registrations[address]
	if registered && registration.Active && m.registry.HasRole(registry.AllowedCollectionsRole, address) {
		return c, nil
	}

	return nil, fmt.Errorf("collection %s: %w", address.Hex(), ErrCollectionNotAllowed)
}

func (m *Marketplace) collectionFeeBps(address common.Address) uint64 {
	registration, exists := m.registrations[address]
	if !exists {
		return 0
	}

	return registration.FeeBps
}

func (m *Marketplace) nextSeq() uint64 {
	m.seq++

	return m.seq
}
