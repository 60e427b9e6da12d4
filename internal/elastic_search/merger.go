package elastic_search

import (
	"github.com/artflect/marketplace-engine/internal/entity"
	"go.uber.org/zap"
)

func mergeRequests(index string, cached Request, action RequestAction, e entity.Entity) entity.Entity {
	switch {
	case index == MarketActionIndex.Get():
		return cached.Entity.(entity.MarketAction)

	case index == ItemIndex.Get():
		result := cached.Entity.(entity.Item)
		if action == ItemSale {
			result.Sold = e.(entity.Item).Sold
			result.Active = e.(entity.Item).Active
			result.Buyer = e.(entity.Item).Buyer
			result.UpdatedAt = e.(entity.Item).UpdatedAt
		} else if action == ItemPriceUpdate {
			result.Price = e.(entity.Item).Price
			result.UpdatedAt = e.(entity.Item).UpdatedAt
		} else if action == ItemToggle {
			result.Active = e.(entity.Item).Active
			result.UpdatedAt = e.(entity.Item).UpdatedAt
		} else {
			result = e.(entity.Item)
		}
		return result

	case index == CollectionIndex.Get():
		result := cached.Entity.(entity.Collection)
		if action == CollectionUpdate {
			result.FeeBps = e.(entity.Collection).FeeBps
			result.Active = e.(entity.Collection).Active
			result.UpdatedAt = e.(entity.Collection).UpdatedAt
		} else {
			result = e.(entity.Collection)
		}
		return result

	case index == NftIndex.Get():
		if action == ApprovalSet {
			return e
		}
		result := cached.Entity.(entity.Nft)
		if action == NftTransfer {
			result.Owner = e.(entity.Nft).Owner
			result.Seq = e.(entity.Nft).Seq
			result.UpdatedAt = e.(entity.Nft).UpdatedAt
		} else if action == NftBurn {
			result.Burned = e.(entity.Nft).Burned
			result.Seq = e.(entity.Nft).Seq
			result.UpdatedAt = e.(entity.Nft).UpdatedAt
		} else {
			result = e.(entity.Nft)
		}
		return result

	case index == RoleIndex.Get():
		return e
	}

	zap.L().Fatal("Failed to merge request")
	return nil
}
