package market

import (
	"math/big"
	"testing"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin       = common.HexToAddress("0xad00000000000000000000000000000000000000")
	seller      = common.HexToAddress("0xa11ce00000000000000000000000000000000000")
	buyer       = common.HexToAddress("0xb0b0000000000000000000000000000000000000")
	feeAccount  = common.HexToAddress("0xfee0000000000000000000000000000000000000")
	artist      = common.HexToAddress("0xa271500000000000000000000000000000000000")
	ngo         = common.HexToAddress("0x0900000000000000000000000000000000000000")
	marketAddr  = common.HexToAddress("0xc0ffee0000000000000000000000000000000000")
	galleryAddr = common.HexToAddress("0x9a11e20000000000000000000000000000000000")
	genesisAddr = common.HexToAddress("0x9e2e515000000000000000000000000000000000")
	outsider    = common.HexToAddress("0x0b5e200000000000000000000000000000000000")
)

// feedScale matches the fixed feed answer, so the required native amount
// equals the quote price unless a test moves the rate.
var feedScale = big.NewInt(100000000)

type harness struct {
	reg      *registry.Registry
	bank     *chain.Bank
	feed     *oracle.Fixed
	resolver *testResolver
	market   *Marketplace
	gallery  *collection.Contract
	genesis  *collection.Contract
}

// testResolver adapts the collection resolver and lets tests inject bare
// stand-ins that implement only the minimal surface.
type testResolver struct {
	inner  *collection.Resolver
	extras map[common.Address]Collection
}

func (r *testResolver) Get(address common.Address) (Collection, bool) {
	if c, exists := r.extras[address]; exists {
		return c, true
	}
	contract, exists := r.inner.Get(address)
	if !exists {
		return nil, false
	}

	return contract, true
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Initialize(admin))

	gallery, err := collection.New(galleryAddr, "Gallery", "GLRY", "ipfs://gallery/", false, reg)
	require.NoError(t, err)
	genesis, err := collection.New(genesisAddr, "Genesis", "GNSS", "ipfs://genesis/", true, reg)
	require.NoError(t, err)

	resolver := collection.NewResolver()
	resolver.Register(gallery)
	resolver.Register(genesis)

	bank := chain.NewBank()
	feed := oracle.NewFixed(feedScale)

	adapted := &testResolver{inner: resolver, extras: map[common.Address]Collection{}}

	m, err := New(marketAddr, reg, bank, feed, adapted, feeAccount, feedScale)
	require.NoError(t, err)

	// gallery is a registered third party: 10% platform fee, 2% royalty,
	// 1% donation
	require.NoError(t, m.RegisterCollection(admin, galleryAddr, 1000))
	require.NoError(t, gallery.SetDefaultRoyalty(admin, artist, 200))
	require.NoError(t, gallery.SetNgo(admin, ngo, 100))

	// token 1 belongs to the seller, the marketplace may move it
	_, err = gallery.Mint(admin, seller)
	require.NoError(t, err)
	require.NoError(t, gallery.SetApprovalForAll(seller, marketAddr, true))

	_, err = genesis.Mint(admin, seller)
	require.NoError(t, err)
	require.NoError(t, genesis.SetApprovalForAll(seller, marketAddr, true))

	require.NoError(t, bank.Deposit(buyer, big.NewInt(10000)))

	return &harness{
		reg:      reg,
		bank:     bank,
		feed:     feed,
		resolver: adapted,
		market:   m,
		gallery:  gallery,
		genesis:  genesis,
	}
}

func (h *harness) list(t *testing.T, price int64) uint64 {
	t.Helper()

	itemId, err := h.market.List(seller, galleryAddr, 1, big.NewInt(price))
	require.NoError(t, err)

	return itemId
}

func TestMarket_New(t *testing.T) {
	h := newHarness(t)

	_, err := New(common.Address{}, h.reg, h.bank, h.feed, h.resolver, feeAccount, feedScale)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(marketAddr, nil, h.bank, h.feed, h.resolver, feeAccount, feedScale)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(marketAddr, h.reg, h.bank, h.feed, h.resolver, feeAccount, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarket_ListAssignsSequentialIds(t *testing.T) {
	h := newHarness(t)

	itemId := h.list(t, 100)
	assert.Equal(t, uint64(1), itemId)

	itemId2, err := h.market.List(seller, genesisAddr, 1, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), itemId2)
	assert.Equal(t, uint64(2), h.market.ItemCount())
}

func TestMarket_ListSnapshotsOwnerAsSeller(t *testing.T) {
	h := newHarness(t)

	operator := outsider
	require.NoError(t, h.gallery.SetApprovalForAll(seller, operator, true))

	itemId, err := h.market.List(operator, galleryAddr, 1, big.NewInt(100))
	require.NoError(t, err)

	item, err := h.market.Item(itemId)
	require.NoError(t, err)
	assert.Equal(t, seller, item.Seller)
	assert.True(t, item.Active)
	assert.False(t, item.Sold)
}

func TestMarket_ListZeroPriceConsumesNoId(t *testing.T) {
	h := newHarness(t)

	_, err := h.market.List(seller, galleryAddr, 1, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.market.List(seller, galleryAddr, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, uint64(0), h.market.ItemCount())
	assert.Equal(t, uint64(1), h.list(t, 100))
}

func TestMarket_ListUnauthorized(t *testing.T) {
	h := newHarness(t)

	_, err := h.market.List(outsider, galleryAddr, 1, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, uint64(0), h.market.ItemCount())
}

func TestMarket_ListUnknownToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.market.List(seller, galleryAddr, 42, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarket_AllowlistPolicy(t *testing.T) {
	h := newHarness(t)

	// registered and active
	assert.True(t, h.market.IsAllowed(galleryAddr))
	// first party, never registered
	assert.True(t, h.market.IsAllowed(genesisAddr))
	// unknown address
	assert.False(t, h.market.IsAllowed(outsider))

	// deactivation closes the registered path
	require.NoError(t, h.market.SetCollectionActive(admin, galleryAddr, false))
	assert.False(t, h.market.IsAllowed(galleryAddr))

	_, err := h.market.List(seller, galleryAddr, 1, big.NewInt(100))
	assert.ErrorIs(t, err, ErrCollectionNotAllowed)

	require.NoError(t, h.market.SetCollectionActive(admin, galleryAddr, true))
	assert.True(t, h.market.IsAllowed(galleryAddr))
}

func TestMarket_AllowlistRequiresRole(t *testing.T) {
	h := newHarness(t)

	// active registration without the role is not enough
	require.NoError(t, h.reg.Revoke(admin, registry.AllowedCollectionsRole, galleryAddr))
	assert.False(t, h.market.IsAllowed(galleryAddr))

	_, err := h.market.List(seller, galleryAddr, 1, big.NewInt(100))
	assert.ErrorIs(t, err, ErrCollectionNotAllowed)
}

func TestMarket_AllowAllBypassesPolicy(t *testing.T) {
	h := newHarness(t)

	bare := newBareCollection(outsider)
	bare.mint(1, seller)
	bare.approve(marketAddr)
	h.resolver.extras[outsider] = bare

	_, err := h.market.List(seller, outsider, 1, big.NewInt(100))
	assert.ErrorIs(t, err, ErrCollectionNotAllowed)

	require.NoError(t, h.market.SetAllowAll(admin, true))
	assert.True(t, h.market.AllowAll())

	_, err = h.market.List(seller, outsider, 1, big.NewInt(100))
	assert.NoError(t, err)
}

func TestMarket_FirstPartyBypass(t *testing.T) {
	h := newHarness(t)

	itemId, err := h.market.List(seller, genesisAddr, 1, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), itemId)
}

func TestMarket_SetPrice(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	require.NoError(t, h.market.SetPrice(seller, itemId, big.NewInt(250)))

	item, err := h.market.Item(itemId)
	require.NoError(t, err)
	assert.Equal(t, int64(250), item.Price.Int64())
}

func TestMarket_SetPriceGuards(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	assert.ErrorIs(t, h.market.SetPrice(outsider, itemId, big.NewInt(1)), ErrUnauthorized)
	assert.ErrorIs(t, h.market.SetPrice(seller, itemId, big.NewInt(0)), ErrInvalidInput)
	assert.ErrorIs(t, h.market.SetPrice(seller, itemId, nil), ErrInvalidInput)
	assert.ErrorIs(t, h.market.SetPrice(seller, 99, big.NewInt(1)), ErrItemUnavailable)

	require.NoError(t, h.market.Purchase(buyer, itemId, big.NewInt(100)))
	assert.ErrorIs(t, h.market.SetPrice(seller, itemId, big.NewInt(1)), ErrInvalidState)
}

func TestMarket_ToggleActive(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	require.NoError(t, h.market.ToggleActive(seller, itemId))
	item, err := h.market.Item(itemId)
	require.NoError(t, err)
	assert.False(t, item.Active)

	require.NoError(t, h.market.ToggleActive(seller, itemId))
	item, err = h.market.Item(itemId)
	require.NoError(t, err)
	assert.True(t, item.Active)
}

func TestMarket_ToggleActiveGuards(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	assert.ErrorIs(t, h.market.ToggleActive(outsider, itemId), ErrUnauthorized)
	assert.ErrorIs(t, h.market.ToggleActive(seller, 99), ErrItemUnavailable)

	require.NoError(t, h.market.Purchase(buyer, itemId, big.NewInt(100)))
	assert.ErrorIs(t, h.market.ToggleActive(seller, itemId), ErrInvalidState)
}

func TestMarket_Queries(t *testing.T) {
	h := newHarness(t)
	h.list(t, 100)

	_, err := h.market.List(seller, genesisAddr, 1, big.NewInt(50))
	require.NoError(t, err)

	items := h.market.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint64(1), items[0].ItemId)
	assert.Equal(t, uint64(2), items[1].ItemId)

	assert.Len(t, h.market.ItemsBySeller(seller), 2)
	assert.Empty(t, h.market.ItemsBySeller(outsider))
	assert.Empty(t, h.market.ItemsByBuyer(buyer))

	require.NoError(t, h.market.Purchase(buyer, 1, big.NewInt(100)))
	bought := h.market.ItemsByBuyer(buyer)
	require.Len(t, bought, 1)
	assert.Equal(t, uint64(1), bought[0].ItemId)
}

func TestMarket_ItemCopiesAreIsolated(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	item, err := h.market.Item(itemId)
	require.NoError(t, err)
	item.Price.SetInt64(1)

	fresh, err := h.market.Item(itemId)
	require.NoError(t, err)
	assert.Equal(t, int64(100), fresh.Price.Int64())
}

func TestMarket_CollectionRegistration(t *testing.T) {
	h := newHarness(t)

	err := h.market.RegisterCollection(admin, galleryAddr, 500)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = h.market.RegisterCollection(admin, outsider, 10001)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = h.market.RegisterCollection(admin, common.Address{}, 500)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = h.market.RegisterCollection(outsider, outsider, 500)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, h.market.RegisterCollection(admin, outsider, 500))
	assert.True(t, h.reg.HasRole(registry.AllowedCollectionsRole, outsider))

	registration, err := h.market.CollectionRegistration(outsider)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), registration.FeeBps)
	assert.True(t, registration.Active)
}

func TestMarket_DeregisterCollection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.market.RegisterCollection(admin, outsider, 500))
	require.NoError(t, h.market.RegisterCollection(admin, genesisAddr, 250))

	collections := h.market.Collections()
	require.Len(t, collections, 3)
	assert.Equal(t, galleryAddr, collections[0].Address)

	// middle removal swaps the tail into place
	require.NoError(t, h.market.DeregisterCollection(admin, outsider))
	collections = h.market.Collections()
	require.Len(t, collections, 2)
	assert.Equal(t, galleryAddr, collections[0].Address)
	assert.Equal(t, genesisAddr, collections[1].Address)

	assert.False(t, h.reg.HasRole(registry.AllowedCollectionsRole, outsider))

	err := h.market.DeregisterCollection(admin, outsider)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// the moved entry is still removable
	require.NoError(t, h.market.DeregisterCollection(admin, genesisAddr))
	require.Len(t, h.market.Collections(), 1)
}

func TestMarket_SetCollectionFee(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.market.SetCollectionFee(admin, galleryAddr, 750))
	registration, err := h.market.CollectionRegistration(galleryAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), registration.FeeBps)

	assert.ErrorIs(t, h.market.SetCollectionFee(admin, galleryAddr, 10001), ErrInvalidInput)
	assert.ErrorIs(t, h.market.SetCollectionFee(admin, outsider, 100), ErrInvalidInput)
	assert.ErrorIs(t, h.market.SetCollectionFee(outsider, galleryAddr, 100), ErrUnauthorized)
}

func TestMarket_AdminConfig(t *testing.T) {
	h := newHarness(t)

	newFee := common.HexToAddress("0xfee1000000000000000000000000000000000000")
	require.NoError(t, h.market.SetFeeAccount(admin, newFee))
	assert.Equal(t, newFee, h.market.FeeAccount())

	assert.ErrorIs(t, h.market.SetFeeAccount(outsider, feeAccount), ErrUnauthorized)
	assert.ErrorIs(t, h.market.SetFeeAccount(admin, common.Address{}), ErrInvalidInput)

	assert.ErrorIs(t, h.market.SetAllowAll(outsider, true), ErrUnauthorized)

	fresh := registry.New()
	require.NoError(t, fresh.Initialize(admin))
	require.NoError(t, h.market.SetRegistry(admin, fresh))
	assert.ErrorIs(t, h.market.SetRegistry(admin, nil), ErrInvalidInput)
}

func TestMarket_PauseGatesMutations(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	assert.ErrorIs(t, h.market.Pause(outsider), ErrUnauthorized)
	require.NoError(t, h.market.Pause(admin))
	assert.True(t, h.market.Paused())

	assert.ErrorIs(t, h.market.Pause(admin), ErrPaused)

	_, err := h.market.List(seller, galleryAddr, 1, big.NewInt(100))
	assert.ErrorIs(t, err, ErrPaused)
	assert.ErrorIs(t, h.market.Purchase(buyer, itemId, big.NewInt(100)), ErrPaused)
	assert.ErrorIs(t, h.market.SetPrice(seller, itemId, big.NewInt(1)), ErrPaused)
	assert.ErrorIs(t, h.market.ToggleActive(seller, itemId), ErrPaused)
	assert.ErrorIs(t, h.market.RegisterCollection(admin, outsider, 100), ErrPaused)
	assert.ErrorIs(t, h.market.SetFeeAccount(admin, feeAccount), ErrPaused)
	assert.ErrorIs(t, h.market.SetAllowAll(admin, true), ErrPaused)

	// withdraw stays available while paused
	_, err = h.market.EmergencyWithdraw(admin)
	assert.NoError(t, err)

	require.NoError(t, h.market.Unpause(admin))
	assert.ErrorIs(t, h.market.Unpause(admin), ErrNotPaused)

	require.NoError(t, h.market.Purchase(buyer, itemId, big.NewInt(100)))
}

func TestMarket_EmergencyWithdraw(t *testing.T) {
	h := newHarness(t)
	itemId := h.list(t, 100)

	// overpay by 50; the surplus stays with the marketplace
	require.NoError(t, h.market.Purchase(buyer, itemId, big.NewInt(150)))
	assert.Equal(t, int64(50), h.market.Balance().Int64())

	_, err := h.market.EmergencyWithdraw(outsider)
	assert.ErrorIs(t, err, ErrUnauthorized)

	before := h.bank.BalanceOf(feeAccount)
	swept, err := h.market.EmergencyWithdraw(admin)
	require.NoError(t, err)
	assert.Equal(t, int64(50), swept.Int64())
	assert.Equal(t, int64(0), h.market.Balance().Int64())
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(50)), h.bank.BalanceOf(feeAccount))
}
