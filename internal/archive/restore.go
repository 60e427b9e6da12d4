package archive

import (
	"fmt"
	"time"

	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const restorePageSize = 500

// Restore replays the archived engine state into an empty engine. Items and
// collection registrations are bulk loaded, role grants and airdrop
// memberships are replayed through the registry as the admin, token ledgers
// and operator approvals through the configured contracts. Must run before
// Subscribe so the replayed mutations are not written back.
func (a archive) Restore(admin common.Address) error {
	items, err := a.restoreItems()
	if err != nil {
		return fmt.Errorf("restore items: %w", err)
	}

	registrations, err := a.restoreRegistrations()
	if err != nil {
		return fmt.Errorf("restore collections: %w", err)
	}

	if err := a.marketplace.Restore(admin, items, registrations); err != nil {
		return fmt.Errorf("restore marketplace: %w", err)
	}

	grants, err := a.restoreGrants(admin)
	if err != nil {
		return fmt.Errorf("restore grants: %w", err)
	}

	airdrops, err := a.restoreAirdrops(admin)
	if err != nil {
		return fmt.Errorf("restore airdrops: %w", err)
	}

	tokens, err := a.restoreTokens(admin)
	if err != nil {
		return fmt.Errorf("restore tokens: %w", err)
	}

	approvals, err := a.restoreApprovals()
	if err != nil {
		return fmt.Errorf("restore approvals: %w", err)
	}

	zap.L().With(
		zap.Int("items", len(items)),
		zap.Int("collections", len(registrations)),
		zap.Int("grants", grants),
		zap.Int("airdrops", airdrops),
		zap.Int("tokens", tokens),
		zap.Int("approvals", approvals),
	).Info("Archive: Restore complete")

	return nil
}

func (a archive) restoreItems() ([]market.Item, error) {
	items := make([]market.Item, 0)

	page := 1
	for {
		entities, _, err := a.itemRepo.GetAllItems(restorePageSize, page)
		if err != nil {
			return nil, err
		}

		for _, e := range entities {
			item, err := itemFromEntity(e)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		if len(entities) < restorePageSize {
			break
		}
		page++
	}

	return items, nil
}

func (a archive) restoreRegistrations() ([]market.Registration, error) {
	registrations := make([]market.Registration, 0)

	page := 1
	for {
		entities, _, err := a.collectionRepo.GetAllCollections(restorePageSize, page)
		if err != nil {
			return nil, err
		}

		for _, e := range entities {
			registrations = append(registrations, market.Registration{
				Address:      common.HexToAddress(e.Address),
				FeeBps:       e.FeeBps,
				Active:       e.Active,
				RegisteredAt: time.Unix(e.RegisteredAt, 0),
			})
		}

		if len(entities) < restorePageSize {
			break
		}
		page++
	}

	return registrations, nil
}

// restoreGrants replays active grants through the registry. The root admin
// grant is already in place after Initialize and revoked grants stay
// archived only; grant sequence numbers are reassigned on replay.
func (a archive) restoreGrants(admin common.Address) (int, error) {
	replayed := 0

	page := 1
	for {
		grants, _, err := a.roleRepo.GetAllGrants(restorePageSize, page)
		if err != nil {
			return replayed, err
		}

		for _, grant := range grants {
			if grant.Revoked || grant.RoleName == "" || grant.RoleName == registry.RootAdminName {
				continue
			}

			roleId, err := a.reg.RegisterRole(admin, grant.RoleName)
			if err != nil {
				return replayed, err
			}

			account := common.HexToAddress(grant.Account)
			if grant.Whitelisted {
				err = a.reg.AddToWhitelist(admin, roleId, account)
			} else {
				err = a.reg.Grant(admin, roleId, account)
			}
			if err != nil {
				return replayed, err
			}
			replayed++
		}

		if len(grants) < restorePageSize {
			break
		}
		page++
	}

	return replayed, nil
}

func (a archive) restoreAirdrops(admin common.Address) (int, error) {
	replayed := 0

	page := 1
	for {
		members, _, err := a.roleRepo.GetAllAirdropMembers(restorePageSize, page)
		if err != nil {
			return replayed, err
		}

		for _, member := range members {
			coll := common.HexToAddress(member.Collection)
			account := common.HexToAddress(member.Account)

			if err := a.reg.AddAirdropMember(admin, coll, account); err != nil {
				return replayed, err
			}
			if member.Claimed {
				if err := a.reg.MarkAirdropClaimed(admin, coll, account); err != nil {
					return replayed, err
				}
			}
			replayed++
		}

		if len(members) < restorePageSize {
			break
		}
		page++
	}

	return replayed, nil
}

// restoreTokens rebuilds the per-contract token ledgers. Contracts are seeded
// from config at boot, so archived tokens of a contract that is no longer
// configured are skipped with a warning rather than failing the restore.
func (a archive) restoreTokens(admin common.Address) (int, error) {
	byContract := make(map[common.Address][]collection.RestoredToken)

	page := 1
	for {
		nfts, _, err := a.nftRepo.GetAllNfts(restorePageSize, page)
		if err != nil {
			return 0, err
		}

		for _, nft := range nfts {
			contract := common.HexToAddress(nft.Contract)
			byContract[contract] = append(byContract[contract], collection.RestoredToken{
				TokenId: nft.TokenId,
				Owner:   common.HexToAddress(nft.Owner),
				Burned:  nft.Burned,
			})
		}

		if len(nfts) < restorePageSize {
			break
		}
		page++
	}

	restored := 0
	for contract, tokens := range byContract {
		c, exists := a.resolver.Get(contract)
		if !exists {
			zap.L().With(
				zap.String("contract", contract.Hex()),
				zap.Int("tokens", len(tokens)),
			).Warn("Archive: Skipping tokens of unconfigured contract")
			continue
		}

		if err := c.Restore(admin, tokens); err != nil {
			return restored, err
		}
		restored += len(tokens)
	}

	return restored, nil
}

// restoreApprovals replays operator approvals so restored listings can still
// settle. Revoked approvals stay archived only.
func (a archive) restoreApprovals() (int, error) {
	replayed := 0

	page := 1
	for {
		approvals, _, err := a.nftRepo.GetAllOperatorApprovals(restorePageSize, page)
		if err != nil {
			return replayed, err
		}

		for _, approval := range approvals {
			if !approval.Approved {
				continue
			}

			c, exists := a.resolver.Get(common.HexToAddress(approval.Contract))
			if !exists {
				continue
			}

			owner := common.HexToAddress(approval.Owner)
			operator := common.HexToAddress(approval.Operator)
			if err := c.SetApprovalForAll(owner, operator, true); err != nil {
				return replayed, err
			}
			replayed++
		}

		if len(approvals) < restorePageSize {
			break
		}
		page++
	}

	return replayed, nil
}

func itemFromEntity(e entity.Item) (market.Item, error) {
	price, err := units.ParseAmount(e.Price)
	if err != nil {
		return market.Item{}, fmt.Errorf("item %d has price %q: %w", e.ItemId, e.Price, err)
	}

	return market.Item{
		ItemId:     e.ItemId,
		Collection: common.HexToAddress(e.Collection),
		TokenId:    e.TokenId,
		Price:      price,
		Seller:     common.HexToAddress(e.Seller),
		Buyer:      common.HexToAddress(e.Buyer),
		Sold:       e.Sold,
		Active:     e.Active,
		ListedAt:   time.Unix(e.ListedAt, 0),
		UpdatedAt:  time.Unix(e.UpdatedAt, 0),
	}, nil
}
