package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Collection is the surface the marketplace requires from every NFT
// contract. Optional capabilities are separate interfaces discovered by type
// assertion, so "does this collection support X" is an explicit typed query
// rather than a call that may or may not exist.
type Collection interface {
	Address() common.Address
	OwnerOf(tokenId uint64) (common.Address, error)
	IsApprovedOrOwner(operator common.Address, tokenId uint64) bool
	TransferFrom(caller, from, to common.Address, tokenId uint64) error
}

// RoyaltyBearer computes the artist split for a sale.
type RoyaltyBearer interface {
	RoyaltyInfo(tokenId uint64, salePrice *big.Int) (common.Address, *big.Int)
}

// DonationBearer declares an NGO payout target and fee.
type DonationBearer interface {
	NgoAddress() common.Address
	NgoFeeBasisPoints() uint64
}

// FirstPartyDeclarer self-declares a collection as first party, which
// bypasses the explicit allowlist.
type FirstPartyDeclarer interface {
	FirstParty() bool
}

// Resolver turns a stored collection address into a live contract. The
// marketplace never holds contract references in its own state.
type Resolver interface {
	Get(address common.Address) (Collection, bool)
}
