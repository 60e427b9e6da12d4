package oracle

import (
	"math/big"
	"time"
)

// Round is one oracle observation. Settlement consumes the answer only; the
// remaining fields travel along for diagnostics.
type Round struct {
	RoundId         uint64
	Answer          *big.Int
	StartedAt       int64
	UpdatedAt       int64
	AnsweredInRound uint64
}

// PriceFeed supplies the quote-to-native exchange rate. Consumers take the
// latest answer as is; staleness is the feed operator's problem by contract.
type PriceFeed interface {
	LatestRoundData() (Round, error)
}

// Fixed is a feed with a constant answer, for local runs and deterministic
// settlement.
type Fixed struct {
	answer  *big.Int
	roundId uint64
}

func NewFixed(answer *big.Int) *Fixed {
	return &Fixed{answer: new(big.Int).Set(answer)}
}

func (f *Fixed) SetAnswer(answer *big.Int) {
	f.answer = new(big.Int).Set(answer)
}

func (f *Fixed) LatestRoundData() (Round, error) {
	f.roundId++
	now := time.Now().Unix()

	return Round{
		RoundId:         f.roundId,
		Answer:          new(big.Int).Set(f.answer),
		StartedAt:       now,
		UpdatedAt:       now,
		AnsweredInRound: f.roundId,
	}, nil
}
