package presale

import (
	"fmt"
	"math/big"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Router swaps native units into the stable treasury currency. Production
// deployments point this at an exchange router; the OracleRouter is the local
// stand-in converting at the feed rate.
type Router interface {
	SwapExactNativeForStable(amountIn, amountOutMin *big.Int, to common.Address) (*big.Int, error)
}

// OracleRouter converts at the feed's latest answer and credits the stable
// ledger directly.
type OracleRouter struct {
	feed          oracle.PriceFeed
	stable        *chain.Bank
	scalingFactor *big.Int
}

func NewOracleRouter(feed oracle.PriceFeed, stable *chain.Bank, scalingFactor *big.Int) (*OracleRouter, error) {
	if feed == nil || stable == nil {
		return nil, fmt.Errorf("missing dependency: %w", ErrInvalidInput)
	}
	if scalingFactor == nil || scalingFactor.Sign() != 1 {
		return nil, fmt.Errorf("scaling factor must be positive: %w", ErrInvalidInput)
	}

	return &OracleRouter{
		feed:          feed,
		stable:        stable,
		scalingFactor: new(big.Int).Set(scalingFactor),
	}, nil
}

func (r *OracleRouter) SwapExactNativeForStable(amountIn, amountOutMin *big.Int, to common.Address) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() != 1 {
		return nil, fmt.Errorf("invalid swap amount: %w", ErrInvalidInput)
	}
	if to == (common.Address{}) {
		return nil, fmt.Errorf("zero swap target: %w", ErrInvalidInput)
	}

	round, err := r.feed.LatestRoundData()
	if err != nil {
		return nil, fmt.Errorf("oracle read failed: %w", err)
	}
	if round.Answer == nil || round.Answer.Sign() != 1 {
		return nil, fmt.Errorf("oracle answer out of range: %w", ErrInvalidState)
	}

	amountOut := units.Scale(amountIn, round.Answer, r.scalingFactor)
	if amountOutMin != nil && amountOut.Cmp(amountOutMin) == -1 {
		return nil, fmt.Errorf("swap output %s below minimum %s: %w", amountOut, amountOutMin, ErrSlippage)
	}

	if err := r.stable.Deposit(to, amountOut); err != nil {
		return nil, fmt.Errorf("stable credit failed: %w", err)
	}

	zap.L().With(
		zap.String("to", to.Hex()),
		zap.String("amountIn", amountIn.String()),
		zap.String("amountOut", amountOut.String()),
	).Debug("Presale: Swap")

	return amountOut, nil
}
