package market

import (
	"fmt"
	"math/big"
	"time"

	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// List creates a ledger entry for a token. The collection must pass the
// allowlist policy, the price must be positive and the caller must be the
// token's owner or an approved operator. The current owner is snapshotted as
// seller. No itemId is consumed on failure.
func (m *Marketplace) List(caller, collection common.Address, tokenId uint64, price *big.Int) (uint64, error) {
	if err := m.guard.Enter(); err != nil {
		return 0, err
	}
	defer m.guard.Exit()

	if m.paused {
		return 0, fmt.Errorf("list: %w", ErrPaused)
	}
	if price == nil || price.Sign() != 1 {
		return 0, fmt.Errorf("price must be positive: %w", ErrInvalidInput)
	}

	c, err := m.allowedCollection(collection)
	if err != nil {
		return 0, err
	}

	owner, err := c.OwnerOf(tokenId)
	if err != nil {
		return 0, fmt.Errorf("token %d of %s: %w", tokenId, collection.Hex(), ErrInvalidInput)
	}
	if !c.IsApprovedOrOwner(caller, tokenId) {
		return 0, fmt.Errorf("caller %s may not list token %d: %w", caller.Hex(), tokenId, ErrUnauthorized)
	}

	m.itemCount++
	now := time.Now()
	item := &Item{
		ItemId:     m.itemCount,
		Collection: collection,
		TokenId:    tokenId,
		Price:      new(big.Int).Set(price),
		Seller:     owner,
		Active:     true,
		ListedAt:   now,
		UpdatedAt:  now,
	}
	m.items[item.ItemId] = item
	m.sellerItems[owner] = append(m.sellerItems[owner], item.ItemId)

	event.EmitEvent(event.ItemListedEvent, ListingReceipt{Item: item.snapshot(), Seq: m.nextSeq()})

	zap.L().With(
		zap.Uint64("itemId", item.ItemId),
		zap.String("collection", collection.Hex()),
		zap.Uint64("tokenId", tokenId),
		zap.String("price", price.String()),
		zap.String("seller", owner.Hex()),
	).Info("Market: List")

	return item.ItemId, nil
}

// SetPrice changes the asking price. Seller only, positive price, forbidden
// once sold.
func (m *Marketplace) SetPrice(caller common.Address, itemId uint64, price *big.Int) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("set price: %w", ErrPaused)
	}

	item, err := m.itemById(itemId)
	if err != nil {
		return err
	}
	if item.Seller != caller {
		return fmt.Errorf("item %d belongs to %s: %w", itemId, item.Seller.Hex(), ErrUnauthorized)
	}
	if item.Sold {
		return fmt.Errorf("item %d already sold: %w", itemId, ErrInvalidState)
	}
	if price == nil || price.Sign() != 1 {
		return fmt.Errorf("price must be positive: %w", ErrInvalidInput)
	}

	oldPrice := item.Price
	item.Price = new(big.Int).Set(price)
	item.UpdatedAt = time.Now()

	event.EmitEvent(event.ItemPriceChangedEvent, PriceReceipt{
		Item:     item.snapshot(),
		OldPrice: oldPrice,
		Seq:      m.nextSeq(),
	})

	zap.L().With(
		zap.Uint64("itemId", itemId),
		zap.String("old", oldPrice.String()),
		zap.String("new", price.String()),
	).Info("Market: SetPrice")

	return nil
}

// ToggleActive flips an unsold item between listed and delisted. The entry
// itself is never deleted.
func (m *Marketplace) ToggleActive(caller common.Address, itemId uint64) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if m.paused {
		return fmt.Errorf("toggle: %w", ErrPaused)
	}

	item, err := m.itemById(itemId)
	if err != nil {
		return err
	}
	if item.Seller != caller {
		return fmt.Errorf("item %d belongs to %s: %w", itemId, item.Seller.Hex(), ErrUnauthorized)
	}
	if item.Sold {
		return fmt.Errorf("item %d already sold: %w", itemId, ErrInvalidState)
	}

	item.Active = !item.Active
	item.UpdatedAt = time.Now()

	event.EmitEvent(event.ItemToggledEvent, ToggleReceipt{Item: item.snapshot(), Seq: m.nextSeq()})

	zap.L().With(zap.Uint64("itemId", itemId), zap.Bool("active", item.Active)).Info("Market: ToggleActive")

	return nil
}

// Item returns a copy of one ledger entry.
func (m *Marketplace) Item(itemId uint64) (Item, error) {
	item, err := m.itemById(itemId)
	if err != nil {
		return Item{}, err
	}

	return item.snapshot(), nil
}

// Items returns the full ledger in itemId order. Unpaginated; unbounded
// growth is a known scaling limit.
func (m *Marketplace) Items() []Item {
	items := make([]Item, 0, len(m.items))
	for itemId := uint64(1); itemId <= m.itemCount; itemId++ {
		if item, exists := m.items[itemId]; exists {
			items = append(items, item.snapshot())
		}
	}

	return items
}

func (m *Marketplace) ItemsBySeller(seller common.Address) []Item {
	return m.itemsByIndex(m.sellerItems[seller])
}

func (m *Marketplace) ItemsByBuyer(buyer common.Address) []Item {
	return m.itemsByIndex(m.buyerItems[buyer])
}

func (m *Marketplace) ItemCount() uint64 {
	return m.itemCount
}

func (m *Marketplace) itemsByIndex(itemIds []uint64) []Item {
	items := make([]Item, 0, len(itemIds))
	for _, itemId := range itemIds {
		items = append(items, m.items[itemId].snapshot())
	}

	return items
}

func (m *Marketplace) itemById(itemId uint64) (*Item, error) {
	item, exists := m.items[itemId]
	if !exists {
		return nil, fmt.Errorf("item %d out of range: %w", itemId, ErrItemUnavailable)
	}

	return item, nil
}

func (i *Item) snapshot() Item {
	item := *i
	item.Price = new(big.Int).Set(i.Price)

	return item
}
