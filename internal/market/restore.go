package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Restore loads previously archived ledger state into an empty marketplace.
// The item counter resumes from the highest restored itemId, so ids are
// never reused across restarts. Role grants are replayed through the
// registry separately; Restore only rebuilds the marketplace's own maps.
func (m *Marketplace) Restore(caller common.Address, items []Item, registrations []Registration) error {
	if err := m.guard.Enter(); err != nil {
		return err
	}
	defer m.guard.Exit()

	if !m.registry.IsRootAdmin(caller) {
		return fmt.Errorf("restore requires root admin: %w", ErrUnauthorized)
	}
	if m.itemCount != 0 || len(m.registrations) != 0 {
		return fmt.Errorf("marketplace is not empty: %w", ErrInvalidState)
	}

	for _, registration := range registrations {
		if registration.Address == (common.Address{}) {
			return fmt.Errorf("restored registration has zero address: %w", ErrInvalidInput)
		}
		r := registration
		m.registrations[r.Address] = &r
		m.collectionIdx[r.Address] = len(m.collections)
		m.collections = append(m.collections, r.Address)
	}

	for _, item := range items {
		if item.ItemId == 0 || item.Price == nil {
			return fmt.Errorf("restored item %d is malformed: %w", item.ItemId, ErrInvalidInput)
		}
		if _, exists := m.items[item.ItemId]; exists {
			return fmt.Errorf("restored item %d is duplicated: %w", item.ItemId, ErrInvalidInput)
		}

		restored := item
		m.items[item.ItemId] = &restored
		m.sellerItems[item.Seller] = append(m.sellerItems[item.Seller], item.ItemId)
		if item.Sold {
			m.buyerItems[item.Buyer] = append(m.buyerItems[item.Buyer], item.ItemId)
		}
		if item.ItemId > m.itemCount {
			m.itemCount = item.ItemId
		}
	}

	zap.L().With(
		zap.Int("items", len(items)),
		zap.Int("collections", len(registrations)),
		zap.Uint64("itemCount", m.itemCount),
	).Info("Market: Restore")

	return nil
}
