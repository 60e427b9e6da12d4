package collection

import (
	"math/big"
	"testing"

	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin        = common.HexToAddress("0xad00000000000000000000000000000000000001")
	minter       = common.HexToAddress("0x1000000000000000000000000000000000000002")
	alice        = common.HexToAddress("0xa11ce00000000000000000000000000000000003")
	bob          = common.HexToAddress("0xb0b0000000000000000000000000000000000004")
	artist       = common.HexToAddress("0xa271570000000000000000000000000000000005")
	ngo          = common.HexToAddress("0x0960000000000000000000000000000000000006")
	contractAddr = common.HexToAddress("0xc011ec0000000000000000000000000000000007")
)

func newTestContract(t *testing.T) (*Contract, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Initialize(admin))
	require.NoError(t, reg.Grant(admin, registry.MinterRole, minter))

	contract, err := New(contractAddr, "Artflect Genesis", "ARTG", "ipfs://genesis/", true, reg)
	require.NoError(t, err)

	// the contract records airdrop claims under its own address
	require.NoError(t, reg.Grant(admin, registry.AirdropManagerRole, contractAddr))

	return contract, reg
}

func TestContract_New(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Initialize(admin))

	_, err := New(common.Address{}, "x", "X", "", false, reg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(contractAddr, "x", "X", "", false, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContract_Mint(t *testing.T) {
	contract, _ := newTestContract(t)

	tokenId, err := contract.Mint(minter, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tokenId)

	owner, err := contract.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	tokenId, err = contract.Mint(admin, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tokenId)
	assert.Equal(t, uint64(2), contract.TotalMinted())
}

func TestContract_MintUnauthorized(t *testing.T) {
	contract, _ := newTestContract(t)

	_, err := contract.Mint(alice, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, contract.Exists(1))
}

func TestContract_MintToZeroAddress(t *testing.T) {
	contract, _ := newTestContract(t)

	_, err := contract.Mint(minter, common.Address{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContract_BatchMint(t *testing.T) {
	contract, _ := newTestContract(t)

	tokenIds, err := contract.BatchMint(minter, alice, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, tokenIds)

	_, err = contract.BatchMint(minter, alice, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContract_TokenURI(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	uri, err := contract.TokenURI(1)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://genesis/1", uri)

	_, err = contract.TokenURI(99)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestContract_TransferFrom(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	require.NoError(t, contract.TransferFrom(alice, alice, bob, 1))

	owner, err := contract.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestContract_TransferFromUnauthorized(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	err = contract.TransferFrom(bob, alice, bob, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	owner, err := contract.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestContract_TransferFromWrongOwner(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	err = contract.TransferFrom(alice, bob, alice, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = contract.TransferFrom(alice, alice, common.Address{}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = contract.TransferFrom(alice, alice, bob, 42)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestContract_ApprovalClears(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	require.NoError(t, contract.Approve(alice, bob, 1))
	assert.True(t, contract.IsApprovedOrOwner(bob, 1))

	require.NoError(t, contract.TransferFrom(bob, alice, bob, 1))

	// approval does not follow the token
	require.NoError(t, contract.TransferFrom(bob, bob, alice, 1))
	assert.False(t, contract.IsApprovedOrOwner(bob, 1))
}

func TestContract_OperatorApproval(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	operator := common.HexToAddress("0x0e0000000000000000000000000000000000000e")
	require.NoError(t, contract.SetApprovalForAll(alice, operator, true))
	assert.True(t, contract.IsApprovedOrOwner(operator, 1))

	require.NoError(t, contract.SetApprovalForAll(alice, operator, false))
	assert.False(t, contract.IsApprovedOrOwner(operator, 1))
}

func TestContract_Burn(t *testing.T) {
	contract, _ := newTestContract(t)
	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)

	assert.ErrorIs(t, contract.Burn(bob, 1), ErrUnauthorized)
	require.NoError(t, contract.Burn(alice, 1))
	assert.False(t, contract.Exists(1))
	assert.ErrorIs(t, contract.Burn(alice, 1), ErrTokenNotFound)
}

func TestContract_RoyaltyInfo(t *testing.T) {
	contract, _ := newTestContract(t)

	// unset royalty pays nothing
	receiver, amount := contract.RoyaltyInfo(1, big.NewInt(100))
	assert.Equal(t, common.Address{}, receiver)
	assert.Equal(t, int64(0), amount.Int64())

	require.NoError(t, contract.SetDefaultRoyalty(admin, artist, 200))

	receiver, amount = contract.RoyaltyInfo(1, big.NewInt(100))
	assert.Equal(t, artist, receiver)
	assert.Equal(t, int64(2), amount.Int64())
}

func TestContract_SetDefaultRoyaltyGuards(t *testing.T) {
	contract, _ := newTestContract(t)

	assert.ErrorIs(t, contract.SetDefaultRoyalty(alice, artist, 200), ErrUnauthorized)
	assert.ErrorIs(t, contract.SetDefaultRoyalty(admin, artist, 10001), ErrInvalidInput)
}

func TestContract_Ngo(t *testing.T) {
	contract, _ := newTestContract(t)

	assert.Equal(t, common.Address{}, contract.NgoAddress())
	assert.Equal(t, uint64(0), contract.NgoFeeBasisPoints())

	require.NoError(t, contract.SetNgo(admin, ngo, 100))
	assert.Equal(t, ngo, contract.NgoAddress())
	assert.Equal(t, uint64(100), contract.NgoFeeBasisPoints())

	assert.ErrorIs(t, contract.SetNgo(alice, ngo, 100), ErrUnauthorized)
	assert.ErrorIs(t, contract.SetNgo(admin, ngo, 20000), ErrInvalidInput)
}

func TestContract_ClaimAirdrop(t *testing.T) {
	contract, reg := newTestContract(t)
	require.NoError(t, reg.AddAirdropMember(admin, contractAddr, alice))

	tokenId, err := contract.ClaimAirdrop(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tokenId)

	owner, err := contract.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
	assert.True(t, reg.HasClaimedAirdrop(contractAddr, alice))

	_, err = contract.ClaimAirdrop(alice)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestContract_ClaimAirdropNotEligible(t *testing.T) {
	contract, _ := newTestContract(t)

	_, err := contract.ClaimAirdrop(bob)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, uint64(0), contract.TotalMinted())
}

func TestContract_Restore(t *testing.T) {
	contract, _ := newTestContract(t)

	tokens := []RestoredToken{
		{TokenId: 1, Owner: alice},
		{TokenId: 2, Owner: bob},
		{TokenId: 3, Burned: true},
	}
	require.NoError(t, contract.Restore(admin, tokens))

	owner, err := contract.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
	assert.False(t, contract.Exists(3))

	// the counter resumes past burned ids
	tokenId, err := contract.Mint(minter, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), tokenId)
}

func TestContract_RestoreGuards(t *testing.T) {
	contract, _ := newTestContract(t)

	assert.ErrorIs(t, contract.Restore(alice, nil), ErrUnauthorized)
	assert.ErrorIs(t, contract.Restore(admin, []RestoredToken{{TokenId: 0, Owner: alice}}), ErrInvalidInput)
	assert.ErrorIs(t, contract.Restore(admin, []RestoredToken{{TokenId: 1}}), ErrInvalidInput)
	assert.ErrorIs(t, contract.Restore(admin, []RestoredToken{
		{TokenId: 1, Owner: alice},
		{TokenId: 1, Owner: bob},
	}), ErrInvalidInput)

	_, err := contract.Mint(minter, alice)
	require.NoError(t, err)
	assert.ErrorIs(t, contract.Restore(admin, []RestoredToken{{TokenId: 2, Owner: bob}}), ErrInvalidState)
}

func TestResolver(t *testing.T) {
	contract, _ := newTestContract(t)

	resolver := NewResolver()
	resolver.Register(contract)

	got, exists := resolver.Get(contractAddr)
	require.True(t, exists)
	assert.Equal(t, contract, got)

	_, exists = resolver.Get(common.HexToAddress("0xdead"))
	assert.False(t, exists)

	assert.Equal(t, []common.Address{contractAddr}, resolver.Addresses())
}
