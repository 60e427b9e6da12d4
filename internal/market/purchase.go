package market

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Purchase settles the sale of an item. The payment is converted through the
// price feed, split between seller, platform, artist and NGO in that order,
// and every split plus the token transfer either lands together or not at
// all. Overpayment above the required amount stays with the marketplace.
func (m *Marketplace) Purchase(buyer common.Address, itemId uint64, payment *big.Int) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("purchase: %w", ErrPaused)
	}
	if buyer == (common.Address{}) {
		return fmt.Errorf("zero buyer address: %w", ErrInvalidInput)
	}

	item, err := m.itemById(itemId)
	if err != nil {
		return err
	}
	if !item.Active || item.Sold {
		return fmt.Errorf("item %d is not for sale: %w", itemId, ErrItemUnavailable)
	}

	c, err := m.allowedCollection(item.Collection)
	if err != nil {
		return err
	}

	if payment == nil || payment.Sign() == -1 {
		return fmt.Errorf("invalid payment amount: %w", ErrInvalidInput)
	}

	required, err := m.requiredAmount(item.Price)
	if err != nil {
		return err
	}
	if payment.Cmp(required) == -1 {
		return fmt.Errorf("payment %s below required %s: %w", payment, required, ErrInsufficientPayment)
	}

	// all splits derive from the required amount, royalty first
	artistWallet := common.Address{}
	artistFee := new(big.Int)
	if bearer, ok := c.(RoyaltyBearer); ok {
		artistWallet, artistFee = bearer.RoyaltyInfo(item.TokenId, required)
		if artistFee == nil {
			artistFee = new(big.Int)
		}
	}

	marketplaceFee := units.Pct(required, m.collectionFeeBps(item.Collection))

	ngoWallet := common.Address{}
	ngoFee := new(big.Int)
	if bearer, ok := c.(DonationBearer); ok && bearer.NgoAddress() != (common.Address{}) {
		ngoWallet = bearer.NgoAddress()
		ngoFee = units.Pct(required, bearer.NgoFeeBasisPoints())
	}

	proceeds := new(big.Int).Set(required)
	proceeds.Sub(proceeds, marketplaceFee)
	proceeds.Sub(proceeds, artistFee)
	proceeds.Sub(proceeds, ngoFee)
	if proceeds.Sign() == -1 {
		return fmt.Errorf("fees exceed required amount %s: %w", required, ErrInvalidState)
	}

	journal := m.bank.Begin()

	if err := journal.Transfer(buyer, m.address, payment); err != nil {
		journal.Revert()
		if errors.Is(err, chain.ErrInsufficientFunds) {
			return fmt.Errorf("buyer balance below payment: %w", ErrInsufficientPayment)
		}
		zap.L().With(zap.Uint64("itemId", itemId), zap.Error(err)).Error("Market: Payment transfer failed")
		return fmt.Errorf("payment transfer: %w", ErrTransferFailed)
	}

	payouts := []struct {
		target common.Address
		amount *big.Int
		label  string
	}{
		{item.Seller, proceeds, "seller"},
		{m.feeAccount, marketplaceFee, "platform"},
		{artistWallet, artistFee, "artist"},
		{ngoWallet, ngoFee, "ngo"},
	}
	for _, payout := range payouts {
		if payout.target == (common.Address{}) {
			continue
		}
		if err := journal.Transfer(m.address, payout.target, payout.amount); err != nil {
			journal.Revert()
			zap.L().With(
				zap.Uint64("itemId", itemId),
				zap.String("payout", payout.label),
				zap.String("target", payout.target.Hex()),
				zap.Error(err),
			).Error("Market: Payout failed")
			return fmt.Errorf("%s payout: %w", payout.label, ErrTransferFailed)
		}
	}

	// mark sold before the token moves; both undo together on failure
	snapshot := *item
	item.Sold = true
	item.Active = false
	item.Buyer = buyer
	item.UpdatedAt = time.Now()

	if err := c.TransferFrom(m.address, snapshot.Seller, buyer, item.TokenId); err != nil {
		*item = snapshot
		journal.Revert()
		zap.L().With(zap.Uint64("itemId", itemId), zap.Error(err)).Error("Market: Token transfer failed")
		return fmt.Errorf("token transfer: %w", ErrTransferFailed)
	}

	m.buyerItems[buyer] = append(m.buyerItems[buyer], item.ItemId)
	journal.Commit()

	event.EmitEvent(event.ItemSoldEvent, SaleReceipt{
		Item:     item.snapshot(),
		Required: required,
		Fee:      marketplaceFee,
		Royalty:  artistFee,
		Donation: ngoFee,
		Proceeds: proceeds,
		Seq:      m.nextSeq(),
	})

	zap.L().With(
		zap.Uint64("itemId", itemId),
		zap.String("collection", item.Collection.Hex()),
		zap.Uint64("tokenId", item.TokenId),
		zap.String("price", item.Price.String()),
		zap.String("required", required.String()),
		zap.String("seller", snapshot.Seller.Hex()),
		zap.String("buyer", buyer.Hex()),
	).Info("Market: Purchase")

	return nil
}

// requiredAmount converts a quote-currency price into native units at the
// feed's latest answer. The answer is taken as is; there is no freshness or
// round-completeness check.
func (m *Marketplace) requiredAmount(price *big.Int) (*big.Int, error) {
	round, err := m.feed.LatestRoundData()
	if err != nil {
		return nil, fmt.Errorf("oracle read failed: %w", err)
	}
	if round.Answer == nil || round.Answer.Sign() != 1 {
		return nil, fmt.Errorf("oracle answer out of range: %w", ErrInvalidState)
	}

	return units.Scale(price, m.scalingFactor, round.Answer), nil
}
