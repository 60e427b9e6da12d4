package presale

import (
	"errors"
	"math/big"
	"testing"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin       = common.HexToAddress("0xad00000000000000000000000000000000000000")
	vip         = common.HexToAddress("0x01b0000000000000000000000000000000000000")
	member      = common.HexToAddress("0x3e3be20000000000000000000000000000000000")
	backer      = common.HexToAddress("0xbacce20000000000000000000000000000000000")
	poor        = common.HexToAddress("0x0002000000000000000000000000000000000000")
	stranger    = common.HexToAddress("0x502a9e2000000000000000000000000000000000")
	presaleAddr = common.HexToAddress("0x90e5a1e000000000000000000000000000000000")
	treasury    = common.HexToAddress("0x02ea502900000000000000000000000000000000")
)

var feedScale = big.NewInt(100000000)

type harness struct {
	reg    *registry.Registry
	native *chain.Bank
	stable *chain.Bank
	feed   *oracle.Fixed
	sale   *Presale
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Initialize(admin))
	require.NoError(t, reg.AddToWhitelist(admin, registry.PrivateSaleRole, vip))
	require.NoError(t, reg.AddToWhitelist(admin, registry.PrivateSaleRole, poor))
	require.NoError(t, reg.AddToWhitelist(admin, registry.PreSaleRole, member))
	require.NoError(t, reg.AddToWhitelist(admin, registry.PreSaleRole, backer))

	native := chain.NewBank()
	stable := chain.NewBank()
	feed := oracle.NewFixed(feedScale)

	router, err := NewOracleRouter(feed, stable, feedScale)
	require.NoError(t, err)

	sale, err := New(presaleAddr, reg, native, feed, router, treasury, feedScale, Caps{
		MinContribution: big.NewInt(10),
		MaxContribution: big.NewInt(500),
		HardCap:         big.NewInt(1000),
	})
	require.NoError(t, err)

	for _, account := range []common.Address{vip, member, backer, stranger} {
		require.NoError(t, native.Deposit(account, big.NewInt(5000)))
	}
	require.NoError(t, native.Deposit(poor, big.NewInt(20)))

	return &harness{reg: reg, native: native, stable: stable, feed: feed, sale: sale}
}

type failingRouter struct {
	err error
}

func (f failingRouter) SwapExactNativeForStable(amountIn, amountOutMin *big.Int, to common.Address) (*big.Int, error) {
	return nil, f.err
}

func TestNew_Validation(t *testing.T) {
	h := newHarness(t)
	router, err := NewOracleRouter(h.feed, h.stable, feedScale)
	require.NoError(t, err)

	_, err = New(common.Address{}, h.reg, h.native, h.feed, router, treasury, feedScale, Caps{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(presaleAddr, h.reg, h.native, h.feed, router, common.Address{}, feedScale, Caps{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(presaleAddr, nil, h.native, h.feed, router, treasury, feedScale, Caps{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(presaleAddr, h.reg, h.native, h.feed, nil, treasury, feedScale, Caps{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(presaleAddr, h.reg, h.native, h.feed, router, treasury, big.NewInt(0), Caps{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(presaleAddr, h.reg, h.native, h.feed, router, treasury, feedScale, Caps{
		MinContribution: big.NewInt(100),
		MaxContribution: big.NewInt(50),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContribute_PrivatePhaseGating(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, PhasePrivate, h.sale.Phase())

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(100)))

	err := h.sale.Contribute(member, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = h.sale.Contribute(stranger, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, int64(100), h.sale.TotalRaised().Int64())
}

func TestContribute_PublicPhaseGating(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sale.SetPhase(admin, PhasePublic))

	require.NoError(t, h.sale.Contribute(member, big.NewInt(100)))

	err := h.sale.Contribute(vip, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = h.sale.Contribute(stranger, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestContribute_MovesFundsAndRecordsLedger(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(100)))

	assert.Equal(t, int64(4900), h.native.BalanceOf(vip).Int64())
	assert.Equal(t, int64(100), h.native.BalanceOf(presaleAddr).Int64())
	assert.Equal(t, int64(100), h.stable.BalanceOf(treasury).Int64())
	assert.Equal(t, int64(100), h.sale.TotalRaised().Int64())
	assert.Equal(t, int64(100), h.sale.ContributionOf(vip).Int64())

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(50)))
	assert.Equal(t, int64(150), h.sale.ContributionOf(vip).Int64())
	assert.Equal(t, int64(150), h.sale.TotalRaised().Int64())
}

func TestContribute_ConvertsAtFeedRate(t *testing.T) {
	h := newHarness(t)

	// the native coin doubles in value: 100 native is worth 200 quote
	h.feed.SetAnswer(new(big.Int).Mul(feedScale, big.NewInt(2)))

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(100)))

	assert.Equal(t, int64(200), h.sale.ContributionOf(vip).Int64())
	assert.Equal(t, int64(200), h.sale.TotalRaised().Int64())
	assert.Equal(t, int64(200), h.stable.BalanceOf(treasury).Int64())
	assert.Equal(t, int64(100), h.native.BalanceOf(presaleAddr).Int64())
}

func TestContribute_BelowMinimum(t *testing.T) {
	h := newHarness(t)

	err := h.sale.Contribute(vip, big.NewInt(5))
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.Equal(t, int64(5000), h.native.BalanceOf(vip).Int64())

	// 20 native at half the rate is worth 10 quote, exactly the minimum
	h.feed.SetAnswer(new(big.Int).Div(feedScale, big.NewInt(2)))
	require.NoError(t, h.sale.Contribute(vip, big.NewInt(20)))
	assert.Equal(t, int64(10), h.sale.ContributionOf(vip).Int64())
}

func TestContribute_PerAccountCap(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(300)))

	err := h.sale.Contribute(vip, big.NewInt(300))
	assert.ErrorIs(t, err, ErrCapExceeded)

	assert.Equal(t, int64(300), h.sale.ContributionOf(vip).Int64())
	assert.Equal(t, int64(4700), h.native.BalanceOf(vip).Int64())

	// topping up to exactly the cap is fine
	require.NoError(t, h.sale.Contribute(vip, big.NewInt(200)))
	assert.Equal(t, int64(500), h.sale.ContributionOf(vip).Int64())
}

func TestContribute_HardCap(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(500)))
	require.NoError(t, h.sale.SetPhase(admin, PhasePublic))
	require.NoError(t, h.sale.Contribute(member, big.NewInt(500)))

	assert.Equal(t, int64(1000), h.sale.TotalRaised().Int64())

	err := h.sale.Contribute(backer, big.NewInt(10))
	assert.ErrorIs(t, err, ErrCapExceeded)
	assert.Equal(t, int64(1000), h.sale.TotalRaised().Int64())
	assert.Equal(t, int64(5000), h.native.BalanceOf(backer).Int64())
}

func TestContribute_RouterFailureRollsBack(t *testing.T) {
	h := newHarness(t)

	sale, err := New(presaleAddr, h.reg, h.native, h.feed, failingRouter{err: errors.New("dex down")}, treasury, feedScale, Caps{})
	require.NoError(t, err)

	err = sale.Contribute(vip, big.NewInt(100))
	assert.ErrorIs(t, err, ErrSwapFailed)

	assert.Equal(t, int64(5000), h.native.BalanceOf(vip).Int64())
	assert.Equal(t, int64(0), h.native.BalanceOf(presaleAddr).Int64())
	assert.Equal(t, int64(0), h.stable.BalanceOf(treasury).Int64())
	assert.Equal(t, int64(0), sale.TotalRaised().Int64())
	assert.Equal(t, int64(0), sale.ContributionOf(vip).Int64())
}

func TestContribute_InsufficientNativeFunds(t *testing.T) {
	h := newHarness(t)

	err := h.sale.Contribute(poor, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(20), h.native.BalanceOf(poor).Int64())
	assert.Equal(t, int64(0), h.sale.TotalRaised().Int64())
}

func TestContribute_InputValidation(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.sale.Contribute(common.Address{}, big.NewInt(100)), ErrInvalidInput)
	assert.ErrorIs(t, h.sale.Contribute(vip, nil), ErrInvalidInput)
	assert.ErrorIs(t, h.sale.Contribute(vip, big.NewInt(0)), ErrInvalidInput)
	assert.ErrorIs(t, h.sale.Contribute(vip, big.NewInt(-5)), ErrInvalidInput)
}

func TestContribute_OracleZeroAnswer(t *testing.T) {
	h := newHarness(t)

	h.feed.SetAnswer(big.NewInt(0))

	err := h.sale.Contribute(vip, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestContribute_ClosedPhase(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sale.SetPhase(admin, PhaseClosed))

	err := h.sale.Contribute(vip, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestContribute_ReentrantCallFailsFast(t *testing.T) {
	h := newHarness(t)

	var reentrantErr error
	h.native.SetHook(presaleAddr, func(from common.Address, amount *big.Int) error {
		reentrantErr = h.sale.Contribute(vip, big.NewInt(50))
		return nil
	})

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(100)))

	assert.ErrorIs(t, reentrantErr, chain.ErrReentrancy)
	assert.Equal(t, int64(100), h.sale.ContributionOf(vip).Int64())
}

func TestSetPhase_Guards(t *testing.T) {
	h := newHarness(t)

	err := h.sale.SetPhase(vip, PhasePublic)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = h.sale.SetPhase(admin, Phase(9))
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, h.sale.SetPhase(admin, PhasePublic))
	assert.Equal(t, PhasePublic, h.sale.Phase())
}

func TestPause_GatesContributeAndSetPhase(t *testing.T) {
	h := newHarness(t)

	err := h.sale.Pause(vip)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, h.sale.Pause(admin))
	assert.True(t, h.sale.Paused())

	assert.ErrorIs(t, h.sale.Contribute(vip, big.NewInt(100)), ErrPaused)
	assert.ErrorIs(t, h.sale.SetPhase(admin, PhasePublic), ErrPaused)
	assert.ErrorIs(t, h.sale.Pause(admin), ErrPaused)

	require.NoError(t, h.sale.Unpause(admin))
	assert.ErrorIs(t, h.sale.Unpause(admin), ErrNotPaused)

	require.NoError(t, h.sale.Contribute(vip, big.NewInt(100)))
}

func TestOracleRouter_Slippage(t *testing.T) {
	h := newHarness(t)

	router, err := NewOracleRouter(h.feed, h.stable, feedScale)
	require.NoError(t, err)

	_, err = router.SwapExactNativeForStable(big.NewInt(100), big.NewInt(101), treasury)
	assert.ErrorIs(t, err, ErrSlippage)

	out, err := router.SwapExactNativeForStable(big.NewInt(100), big.NewInt(100), treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.Int64())
}

func TestOracleRouter_Validation(t *testing.T) {
	h := newHarness(t)

	router, err := NewOracleRouter(h.feed, h.stable, feedScale)
	require.NoError(t, err)

	_, err = router.SwapExactNativeForStable(nil, nil, treasury)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = router.SwapExactNativeForStable(big.NewInt(0), nil, treasury)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = router.SwapExactNativeForStable(big.NewInt(100), nil, common.Address{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	h.feed.SetAnswer(big.NewInt(0))
	_, err = router.SwapExactNativeForStable(big.NewInt(100), nil, treasury)
	assert.ErrorIs(t, err, ErrInvalidState)
}
