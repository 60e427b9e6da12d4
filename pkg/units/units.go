package units

import (
	"errors"
	"math/big"
)

const (
	// BpsDenominator is the fee denominator. 100 bps = 1%.
	BpsDenominator = 10000

	// MaxBps is the largest fee a single split may carry.
	MaxBps = BpsDenominator
)

var ErrInvalidAmount = errors.New("invalid amount")

// Pct returns amount * bps / 10000, flooring toward zero. The input is never
// mutated.
func Pct(amount *big.Int, bps uint64) *big.Int {
	if amount == nil {
		return new(big.Int)
	}

	result := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))

	return result.Div(result, big.NewInt(BpsDenominator))
}

// Scale returns amount * numerator / denominator with floor division, the
// shape used for oracle conversions. A zero denominator returns zero.
func Scale(amount, numerator, denominator *big.Int) *big.Int {
	if amount == nil || numerator == nil || denominator == nil || denominator.Sign() == 0 {
		return new(big.Int)
	}

	result := new(big.Int).Mul(amount, numerator)

	return result.Div(result, denominator)
}

// ParseAmount parses a base-10 amount in quote units.
func ParseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() == -1 {
		return nil, ErrInvalidAmount
	}

	return amount, nil
}

func ValidBps(bps uint64) bool {
	return bps <= MaxBps
}
