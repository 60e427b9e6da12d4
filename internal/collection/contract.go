package collection

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidState  = errors.New("invalid state")
	ErrTokenNotFound = errors.New("token not found")
)

// Contract is an NFT collection sharing one role registry with the rest of
// the system. Minting requires the minter role, configuration requires root
// admin, and airdrop claims are checked and recorded through the registry.
type Contract struct {
	address    common.Address
	name       string
	symbol     string
	baseURI    string
	firstParty bool
	registry   *registry.Registry
	seq        uint64

	nextTokenId uint64
	owners      map[uint64]common.Address
	approvals   map[uint64]common.Address
	operators   map[common.Address]map[common.Address]bool

	royaltyReceiver common.Address
	royaltyBps      uint64
	ngoAddress      common.Address
	ngoBps          uint64
}

func New(address common.Address, name, symbol, baseURI string, firstParty bool, reg *registry.Registry) (*Contract, error) {
	if address == (common.Address{}) {
		return nil, fmt.Errorf("zero contract address: %w", ErrInvalidInput)
	}
	if reg == nil {
		return nil, fmt.Errorf("nil registry: %w", ErrInvalidInput)
	}

	return &Contract{
		address:    address,
		name:       name,
		symbol:     symbol,
		baseURI:    baseURI,
		firstParty: firstParty,
		registry:   reg,
		owners:     map[uint64]common.Address{},
		approvals:  map[uint64]common.Address{},
		operators:  map[common.Address]map[common.Address]bool{},
	}, nil
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) Name() string {
	return c.name
}

func (c *Contract) Symbol() string {
	return c.symbol
}

// FirstParty reports the self-declared first-party flag, fixed at
// construction.
func (c *Contract) FirstParty() bool {
	return c.firstParty
}

// Mint creates the next token for to. The caller needs the minter role or
// root admin.
func (c *Contract) Mint(caller, to common.Address) (uint64, error) {
	if !c.registry.HasRole(registry.MinterRole, caller) && !c.registry.IsRootAdmin(caller) {
		return 0, fmt.Errorf("mint requires minter role: %w", ErrUnauthorized)
	}

	return c.mint(to)
}

func (c *Contract) BatchMint(caller, to common.Address, count uint64) ([]uint64, error) {
	if count == 0 {
		return nil, fmt.Errorf("zero mint count: %w", ErrInvalidInput)
	}
	if !c.registry.HasRole(registry.MinterRole, caller) && !c.registry.IsRootAdmin(caller) {
		return nil, fmt.Errorf("mint requires minter role: %w", ErrUnauthorized)
	}

	tokenIds := make([]uint64, 0, count)
	for i := uint64(0); i < count; i++ {
		tokenId, err := c.mint(to)
		if err != nil {
			return nil, err
		}
		tokenIds = append(tokenIds, tokenId)
	}

	return tokenIds, nil
}

func (c *Contract) mint(to common.Address) (uint64, error) {
	if to == (common.Address{}) {
		return 0, fmt.Errorf("mint to zero address: %w", ErrInvalidInput)
	}

	c.nextTokenId++
	tokenId := c.nextTokenId
	c.owners[tokenId] = to

	event.EmitEvent(event.TokenMintedEvent, TokenReceipt{
		Contract: c.address,
		TokenId:  tokenId,
		Owner:    to,
		Uri:      fmt.Sprintf("%s%d", c.baseURI, tokenId),
		Seq:      c.nextSeq(),
	})

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.Uint64("tokenId", tokenId),
		zap.String("owner", to.Hex()),
	).Info("Collection: Mint")

	return tokenId, nil
}

func (c *Contract) Burn(caller common.Address, tokenId uint64) error {
	owner, exists := c.owners[tokenId]
	if !exists {
		return fmt.Errorf("token %d: %w", tokenId, ErrTokenNotFound)
	}
	if !c.isApprovedOrOwner(caller, owner, tokenId) {
		return fmt.Errorf("burn of token %d: %w", tokenId, ErrUnauthorized)
	}

	uri, _ := c.TokenURI(tokenId)
	delete(c.owners, tokenId)
	delete(c.approvals, tokenId)

	event.EmitEvent(event.TokenBurnedEvent, TokenReceipt{
		Contract: c.address,
		TokenId:  tokenId,
		Owner:    owner,
		Uri:      uri,
		Seq:      c.nextSeq(),
	})

	zap.L().With(zap.String("contract", c.address.Hex()), zap.Uint64("tokenId", tokenId)).Info("Collection: Burn")

	return nil
}

func (c *Contract) Exists(tokenId uint64) bool {
	_, exists := c.owners[tokenId]

	return exists
}

func (c *Contract) OwnerOf(tokenId uint64) (common.Address, error) {
	owner, exists := c.owners[tokenId]
	if !exists {
		return common.Address{}, fmt.Errorf("token %d: %w", tokenId, ErrTokenNotFound)
	}

	return owner, nil
}

func (c *Contract) TotalMinted() uint64 {
	return c.nextTokenId
}

// TokenURI joins the base URI with the token id. Metadata storage itself
// lives off-system.
func (c *Contract) TokenURI(tokenId uint64) (string, error) {
	if !c.Exists(tokenId) {
		return "", fmt.Errorf("token %d: %w", tokenId, ErrTokenNotFound)
	}

	return fmt.Sprintf("%s%d", c.baseURI, tokenId), nil
}

// Approve lets operator move one token. Only the owner or one of its
// approved-for-all operators may approve.
func (c *Contract) Approve(caller, operator common.Address, tokenId uint64) error {
	owner, exists := c.owners[tokenId]
	if !exists {
		return fmt.Errorf("token %d: %w", tokenId, ErrTokenNotFound)
	}
	if caller != owner && !c.operators[owner][caller] {
		return fmt.Errorf("approve of token %d: %w", tokenId, ErrUnauthorized)
	}

	c.approvals[tokenId] = operator

	return nil
}

func (c *Contract) SetApprovalForAll(caller, operator common.Address, approved bool) error {
	if operator == (common.Address{}) {
		return fmt.Errorf("zero operator address: %w", ErrInvalidInput)
	}

	if c.operators[caller] == nil {
		c.operators[caller] = map[common.Address]bool{}
	}
	c.operators[caller][operator] = approved

	event.EmitEvent(event.OperatorApprovalEvent, ApprovalReceipt{
		Contract: c.address,
		Owner:    caller,
		Operator: operator,
		Approved: approved,
		Seq:      c.nextSeq(),
	})

	return nil
}

// IsApprovedOrOwner reports whether operator may move the token. Unknown
// tokens are nobody's to move.
func (c *Contract) IsApprovedOrOwner(operator common.Address, tokenId uint64) bool {
	owner, exists := c.owners[tokenId]
	if !exists {
		return false
	}

	return c.isApprovedOrOwner(operator, owner, tokenId)
}

func (c *Contract) isApprovedOrOwner(operator, owner common.Address, tokenId uint64) bool {
	if operator == owner {
		return true
	}
	if c.approvals[tokenId] == operator {
		return true
	}

	return c.operators[owner][operator]
}

// TransferFrom moves a token. The caller must be the owner, the token's
// approved operator, or approved for all of the owner's tokens. The per-token
// approval clears on transfer.
func (c *Contract) TransferFrom(caller, from, to common.Address, tokenId uint64) error {
	owner, exists := c.owners[tokenId]
	if !exists {
		return fmt.Errorf("token %d: %w", tokenId, ErrTokenNotFound)
	}
	if owner != from {
		return fmt.Errorf("token %d is not owned by %s: %w", tokenId, from.Hex(), ErrInvalidInput)
	}
	if to == (common.Address{}) {
		return fmt.Errorf("transfer to zero address: %w", ErrInvalidInput)
	}
	if !c.isApprovedOrOwner(caller, owner, tokenId) {
		return fmt.Errorf("transfer of token %d: %w", tokenId, ErrUnauthorized)
	}

	c.owners[tokenId] = to
	delete(c.approvals, tokenId)

	uri, _ := c.TokenURI(tokenId)
	event.EmitEvent(event.TokenTransferredEvent, TokenReceipt{
		Contract: c.address,
		TokenId:  tokenId,
		Owner:    to,
		From:     from,
		Uri:      uri,
		Seq:      c.nextSeq(),
	})

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
	).Info("Collection: Transfer")

	return nil
}

// SetDefaultRoyalty configures the collection-wide royalty split. Root admin
// only; bps is capped at the denominator.
func (c *Contract) SetDefaultRoyalty(caller, receiver common.Address, bps uint64) error {
	if !c.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set royalty requires root admin: %w", ErrUnauthorized)
	}
	if !units.ValidBps(bps) {
		return fmt.Errorf("royalty bps %d out of range: %w", bps, ErrInvalidInput)
	}

	c.royaltyReceiver = receiver
	c.royaltyBps = bps

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.String("receiver", receiver.Hex()),
		zap.Uint64("bps", bps),
	).Info("Collection: SetDefaultRoyalty")

	return nil
}

// RoyaltyInfo computes the royalty split for a sale price. A zero receiver
// means no royalty is due.
func (c *Contract) RoyaltyInfo(tokenId uint64, salePrice *big.Int) (common.Address, *big.Int) {
	if c.royaltyReceiver == (common.Address{}) {
		return common.Address{}, new(big.Int)
	}

	return c.royaltyReceiver, units.Pct(salePrice, c.royaltyBps)
}

// SetNgo configures the donation split. Root admin only.
func (c *Contract) SetNgo(caller, ngo common.Address, bps uint64) error {
	if !c.registry.IsRootAdmin(caller) {
		return fmt.Errorf("set ngo requires root admin: %w", ErrUnauthorized)
	}
	if !units.ValidBps(bps) {
		return fmt.Errorf("ngo bps %d out of range: %w", bps, ErrInvalidInput)
	}

	c.ngoAddress = ngo
	c.ngoBps = bps

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.String("ngo", ngo.Hex()),
		zap.Uint64("bps", bps),
	).Info("Collection: SetNgo")

	return nil
}

func (c *Contract) NgoAddress() common.Address {
	return c.ngoAddress
}

func (c *Contract) NgoFeeBasisPoints() uint64 {
	return c.ngoBps
}

// ClaimAirdrop mints one token to an eligible caller, once. Eligibility and
// the claimed flag live in the shared registry; the contract's own address
// must hold the airdrop-manager role there to record claims.
func (c *Contract) ClaimAirdrop(caller common.Address) (uint64, error) {
	if !c.registry.IsAirdropMember(c.address, caller) {
		return 0, fmt.Errorf("account %s is not eligible: %w", caller.Hex(), ErrUnauthorized)
	}
	if c.registry.HasClaimedAirdrop(c.address, caller) {
		return 0, fmt.Errorf("airdrop already claimed: %w", ErrInvalidState)
	}

	if err := c.registry.MarkAirdropClaimed(c.address, c.address, caller); err != nil {
		return 0, err
	}

	tokenId, err := c.mint(caller)
	if err != nil {
		return 0, err
	}

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.String("account", caller.Hex()),
		zap.Uint64("tokenId", tokenId),
	).Info("Collection: ClaimAirdrop")

	return tokenId, nil
}

// RestoredToken is one archived ledger row fed back at boot.
type RestoredToken struct {
	TokenId uint64
	Owner   common.Address
	Burned  bool
}

// Restore loads previously archived token state into an empty ledger. The
// token counter resumes from the highest restored id, burned ids included,
// so ids are never reused across restarts. Approvals are replayed through
// SetApprovalForAll separately.
func (c *Contract) Restore(caller common.Address, tokens []RestoredToken) error {
	if !c.registry.IsRootAdmin(caller) {
		return fmt.Errorf("restore requires root admin: %w", ErrUnauthorized)
	}
	if c.nextTokenId != 0 {
		return fmt.Errorf("contract %s is not empty: %w", c.address.Hex(), ErrInvalidState)
	}

	for _, token := range tokens {
		if token.TokenId == 0 || (!token.Burned && token.Owner == (common.Address{})) {
			return fmt.Errorf("restored token %d is malformed: %w", token.TokenId, ErrInvalidInput)
		}
		if _, exists := c.owners[token.TokenId]; exists {
			return fmt.Errorf("restored token %d is duplicated: %w", token.TokenId, ErrInvalidInput)
		}
		if !token.Burned {
			c.owners[token.TokenId] = token.Owner
		}
		if token.TokenId > c.nextTokenId {
			c.nextTokenId = token.TokenId
		}
	}

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.Int("tokens", len(tokens)),
		zap.Uint64("nextTokenId", c.nextTokenId),
	).Info("Collection: Restore")

	return nil
}

func (c *Contract) nextSeq() uint64 {
	c.seq++

	return c.seq
}
