package factory

import (
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/market"
)

type ItemFactory interface {
	CreateItem(item market.Item) entity.Item
	CreateItemFromListing(receipt market.ListingReceipt) entity.Item
	CreateItemFromSale(receipt market.SaleReceipt) entity.Item
	CreateItemFromPriceChange(receipt market.PriceReceipt) entity.Item
	CreateItemFromToggle(receipt market.ToggleReceipt) entity.Item
}

type itemFactory struct{}

func NewItemFactory() ItemFactory {
	return itemFactory{}
}

func (f itemFactory) CreateItem(item market.Item) entity.Item {
	return entity.Item{
		ItemId:     item.ItemId,
		Collection: hexAddr(item.Collection),
		TokenId:    item.TokenId,
		Price:      item.Price.String(),
		Seller:     hexAddr(item.Seller),
		Buyer:      hexAddr(item.Buyer),
		Active:     item.Active,
		Sold:       item.Sold,
		ListedAt:   item.ListedAt.Unix(),
		UpdatedAt:  item.UpdatedAt.Unix(),
	}
}

func (f itemFactory) CreateItemFromListing(receipt market.ListingReceipt) entity.Item {
	return f.CreateItem(receipt.Item)
}

func (f itemFactory) CreateItemFromSale(receipt market.SaleReceipt) entity.Item {
	return f.CreateItem(receipt.Item)
}

func (f itemFactory) CreateItemFromPriceChange(receipt market.PriceReceipt) entity.Item {
	return f.CreateItem(receipt.Item)
}

func (f itemFactory) CreateItemFromToggle(receipt market.ToggleReceipt) entity.Item {
	return f.CreateItem(receipt.Item)
}
