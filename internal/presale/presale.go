package presale

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBelowMinimum      = errors.New("contribution below minimum")
	ErrCapExceeded       = errors.New("contribution cap exceeded")
	ErrSwapFailed        = errors.New("swap failed")
	ErrSlippage          = errors.New("slippage")
	ErrPaused            = errors.New("presale paused")
	ErrNotPaused         = errors.New("presale not paused")
)

type Phase int

const (
	PhasePrivate Phase = iota
	PhasePublic
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhasePrivate:
		return "private"
	case PhasePublic:
		return "public"
	case PhaseClosed:
		return "closed"
	}

	return "unknown"
}

// ParsePhase maps a phase name back to its Phase.
func ParsePhase(name string) (Phase, error) {
	switch name {
	case "private":
		return PhasePrivate, nil
	case "public":
		return PhasePublic, nil
	case "closed":
		return PhaseClosed, nil
	}

	return 0, fmt.Errorf("unknown phase %q: %w", name, ErrInvalidInput)
}

// Caps bound contributions in quote units. A nil field disables that bound.
type Caps struct {
	MinContribution *big.Int
	MaxContribution *big.Int
	HardCap         *big.Int
}

// ContributionReceipt is emitted per accepted contribution. Amount is the
// native input, Value its quote valuation at the feed rate, Stable what the
// router credited to the treasury.
type ContributionReceipt struct {
	Account common.Address
	Amount  *big.Int
	Value   *big.Int
	Stable  *big.Int
	Phase   string
	Seq     uint64
}

// Presale collects native contributions from whitelisted accounts, values
// them through the price feed and swaps them into the stable treasury. Same
// pause and reentrancy discipline as the marketplace.
type Presale struct {
	address       common.Address
	registry      *registry.Registry
	bank          *chain.Bank
	feed          oracle.PriceFeed
	router        Router
	treasury      common.Address
	scalingFactor *big.Int
	caps          Caps
	phase         Phase
	paused        bool
	guard         chain.Guard
	seq           uint64

	contributions map[common.Address]*big.Int
	totalRaised   *big.Int
}

func New(
	address common.Address,
	reg *registry.Registry,
	bank *chain.Bank,
	feed oracle.PriceFeed,
	router Router,
	treasury common.Address,
	scalingFactor *big.Int,
	caps Caps,
) (*Presale, error) {
	if address == (common.Address{}) || treasury == (common.Address{}) {
		return nil, fmt.Errorf("zero address: %w", ErrInvalidInput)
	}
	if reg == nil || bank == nil || feed == nil || router == nil {
		return nil, fmt.Errorf("missing dependency: %w", ErrInvalidInput)
	}
	if scalingFactor == nil || scalingFactor.Sign() != 1 {
		return nil, fmt.Errorf("scaling factor must be positive: %w", ErrInvalidInput)
	}
	if caps.MinContribution != nil && caps.MaxContribution != nil &&
		caps.MinContribution.Cmp(caps.MaxContribution) == 1 {
		return nil, fmt.Errorf("minimum above maximum: %w", ErrInvalidInput)
	}

	return &Presale{
		address:       address,
		registry:      reg,
		bank:          bank,
		feed:          feed,
		router:        router,
		treasury:      treasury,
		scalingFactor: new(big.Int).Set(scalingFactor),
		caps:          caps,
		phase:         PhasePrivate,
		contributions: map[common.Address]*big.Int{},
		totalRaised:   new(big.Int),
	}, nil
}

// Contribute takes a native amount from the caller, checks the phase
// whitelist and the caps against its quote valuation, and swaps it to the
// treasury. The native leg and the swap either land together or not at all.
func (p *Presale) Contribute(caller common.Address, amount *big.Int) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if p.paused {
		return fmt.Errorf("contribute: %w", ErrPaused)
	}
	if p.phase == PhaseClosed {
		return fmt.Errorf("presale closed: %w", ErrInvalidState)
	}
	if caller == (common.Address{}) {
		return fmt.Errorf("zero contributor address: %w", ErrInvalidInput)
	}
	if amount == nil || amount.Sign() != 1 {
		return fmt.Errorf("invalid contribution amount: %w", ErrInvalidInput)
	}

	role := registry.PreSaleRole
	if p.phase == PhasePrivate {
		role = registry.PrivateSaleRole
	}
	if !p.registry.HasRole(role, caller) {
		return fmt.Errorf("caller is not whitelisted for the %s phase: %w", p.phase, ErrUnauthorized)
	}

	value, err := p.quoteValue(amount)
	if err != nil {
		return err
	}

	if p.caps.MinContribution != nil && value.Cmp(p.caps.MinContribution) == -1 {
		return fmt.Errorf("contribution %s below minimum %s: %w", value, p.caps.MinContribution, ErrBelowMinimum)
	}

	contributed := p.contributionOf(caller)
	cumulative := new(big.Int).Add(contributed, value)
	if p.caps.MaxContribution != nil && cumulative.Cmp(p.caps.MaxContribution) == 1 {
		return fmt.Errorf("cumulative contribution %s above maximum %s: %w", cumulative, p.caps.MaxContribution, ErrCapExceeded)
	}

	raised := new(big.Int).Add(p.totalRaised, value)
	if p.caps.HardCap != nil && raised.Cmp(p.caps.HardCap) == 1 {
		return fmt.Errorf("total raised %s above hard cap %s: %w", raised, p.caps.HardCap, ErrCapExceeded)
	}

	journal := p.bank.Begin()

	if err := journal.Transfer(caller, p.address, amount); err != nil {
		journal.Revert()
		if errors.Is(err, chain.ErrInsufficientFunds) {
			return fmt.Errorf("contributor balance below amount: %w", ErrInsufficientFunds)
		}
		zap.L().With(zap.String("caller", caller.Hex()), zap.Error(err)).Error("Presale: Contribution transfer failed")
		return fmt.Errorf("contribution transfer: %w", ErrSwapFailed)
	}

	stable, err := p.router.SwapExactNativeForStable(amount, value, p.treasury)
	if err != nil {
		journal.Revert()
		zap.L().With(zap.String("caller", caller.Hex()), zap.Error(err)).Error("Presale: Swap failed")
		return fmt.Errorf("router swap: %w", ErrSwapFailed)
	}

	p.contributions[caller] = cumulative
	p.totalRaised = raised
	journal.Commit()

	event.EmitEvent(event.PresaleContributionEvent, ContributionReceipt{
		Account: caller,
		Amount:  new(big.Int).Set(amount),
		Value:   new(big.Int).Set(value),
		Stable:  stable,
		Phase:   p.phase.String(),
		Seq:     p.nextSeq(),
	})

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("amount", amount.String()),
		zap.String("value", value.String()),
		zap.String("phase", p.phase.String()),
	).Info("Presale: Contribute")

	return nil
}

// SetPhase moves the fundraiser between private, public and closed. Root
// admin only.
func (p *Presale) SetPhase(caller common.Address, phase Phase) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if p.paused {
		return fmt.Errorf("set phase: %w", ErrPaused)
	}
	if !p.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set phase requires root admin: %w", ErrUnauthorized)
	}
	if phase < PhasePrivate || phase > PhaseClosed {
		return fmt.Errorf("unknown phase %d: %w", phase, ErrInvalidInput)
	}

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("old", p.phase.String()),
		zap.String("new", phase.String()),
	).Info("Presale: SetPhase")

	p.phase = phase

	return nil
}

func (p *Presale) Pause(caller common.Address) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if !p.registry.IsRootAdmin(caller) {
		return fmt.Errorf("pause requires root admin: %w", ErrUnauthorized)
	}
	if p.paused {
		return fmt.Errorf("already paused: %w", ErrPaused)
	}

	p.paused = true
	zap.L().With(zap.String("caller", caller.Hex())).Warn("Presale: Paused")

	return nil
}

func (p *Presale) Unpause(caller common.Address) error {
	if err := p.guard.Enter(); err != nil {
		return err
	}
	defer p.guard.Exit()

	if !p.registry.IsRootAdmin(caller) {
		return fmt.Errorf("unpause requires root admin: %w", ErrUnauthorized)
	}
	if !p.paused {
		return fmt.Errorf("not paused: %w", ErrNotPaused)
	}

	p.paused = false
	zap.L().With(zap.String("caller", caller.Hex())).Warn("Presale: Unpaused")

	return nil
}

func (p *Presale) Phase() Phase {
	return p.phase
}

func (p *Presale) Paused() bool {
	return p.paused
}

func (p *Presale) Treasury() common.Address {
	return p.treasury
}

// TotalRaised is the quote valuation of every accepted contribution.
func (p *Presale) TotalRaised() *big.Int {
	return new(big.Int).Set(p.totalRaised)
}

func (p *Presale) ContributionOf(account common.Address) *big.Int {
	return new(big.Int).Set(p.contributionOf(account))
}

func (p *Presale) contributionOf(account common.Address) *big.Int {
	if contributed, exists := p.contributions[account]; exists {
		return contributed
	}

	return new(big.Int)
}

func (p *Presale) quoteValue(amount *big.Int) (*big.Int, error) {
	round, err := p.feed.LatestRoundData()
	if err != nil {
		return nil, fmt.Errorf("oracle read failed: %w", err)
	}
	if round.Answer == nil || round.Answer.Sign() != 1 {
		return nil, fmt.Errorf("oracle answer out of range: %w", ErrInvalidState)
	}

	return units.Scale(amount, round.Answer, p.scalingFactor), nil
}

func (p *Presale) nextSeq() uint64 {
	p.seq++

	return p.seq
}
