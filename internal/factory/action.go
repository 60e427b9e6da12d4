package factory

import (
	"time"

	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/presale"
)

type MarketActionFactory interface {
	CreateListingAction(receipt market.ListingReceipt) entity.MarketAction
	CreateSaleAction(receipt market.SaleReceipt) entity.MarketAction
	CreatePriceChangeAction(receipt market.PriceReceipt) entity.MarketAction
	CreateToggleAction(receipt market.ToggleReceipt) entity.MarketAction
	CreateContributionAction(receipt presale.ContributionReceipt) entity.MarketAction
}

type marketActionFactory struct{}

func NewMarketActionFactory() MarketActionFactory {
	return marketActionFactory{}
}

func (f marketActionFactory) CreateListingAction(receipt market.ListingReceipt) entity.MarketAction {
	item := receipt.Item

	return entity.MarketAction{
		ItemId:     item.ItemId,
		Collection: hexAddr(item.Collection),
		TokenId:    item.TokenId,
		Action:     entity.ListingAction,
		From:       hexAddr(item.Seller),
		Cost:       item.Price.String(),
		Fee:        "0",
		Royalty:    "0",
		Donation:   "0",
		Proceeds:   "0",
		Seq:        receipt.Seq,
		OccurredAt: time.Now().Unix(),
	}
}

func (f marketActionFactory) CreateSaleAction(receipt market.SaleReceipt) entity.MarketAction {
	item := receipt.Item

	return entity.MarketAction{
		ItemId:     item.ItemId,
		Collection: hexAddr(item.Collection),
		TokenId:    item.TokenId,
		Action:     entity.SaleAction,
		From:       hexAddr(item.Seller),
		To:         hexAddr(item.Buyer),
		Cost:       receipt.Required.String(),
		Fee:        receipt.Fee.String(),
		Royalty:    receipt.Royalty.String(),
		Donation:   receipt.Donation.String(),
		Proceeds:   receipt.Proceeds.String(),
		Seq:        receipt.Seq,
		OccurredAt: time.Now().Unix(),
	}
}

func (f marketActionFactory) CreatePriceChangeAction(receipt market.PriceReceipt) entity.MarketAction {
	item := receipt.Item

	return entity.MarketAction{
		ItemId:     item.ItemId,
		Collection: hexAddr(item.Collection),
		TokenId:    item.TokenId,
		Action:     entity.PriceChangeAction,
		From:       hexAddr(item.Seller),
		Cost:       item.Price.String(),
		Fee:        "0",
		Royalty:    "0",
		Donation:   "0",
		Proceeds:   "0",
		Seq:        receipt.Seq,
		OccurredAt: time.Now().Unix(),
	}
}

func (f marketActionFactory) CreateToggleAction(receipt market.ToggleReceipt) entity.MarketAction {
	item := receipt.Item

	return entity.MarketAction{
		ItemId:     item.ItemId,
		Collection: hexAddr(item.Collection),
		TokenId:    item.TokenId,
		Action:     entity.ToggleAction,
		From:       hexAddr(item.Seller),
		Cost:       item.Price.String(),
		Fee:        "0",
		Royalty:    "0",
		Donation:   "0",
		Proceeds:   "0",
		Seq:        receipt.Seq,
		OccurredAt: time.Now().Unix(),
	}
}

func (f marketActionFactory) CreateContributionAction(receipt presale.ContributionReceipt) entity.MarketAction {
	return entity.MarketAction{
		Action:     entity.ContributionAction,
		From:       hexAddr(receipt.Account),
		Cost:       receipt.Amount.String(),
		Fee:        "0",
		Royalty:    "0",
		Donation:   "0",
		Proceeds:   receipt.Stable.String(),
		Seq:        receipt.Seq,
		OccurredAt: time.Now().Unix(),
	}
}
