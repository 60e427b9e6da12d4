package registry

import (
	"fmt"

	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// airdrop holds the eligibility and claim state for one collection. Each
// collection keyed in the registry gets its own isolated sets.
type airdrop struct {
	members []common.Address
	index   map[common.Address]int
	claimed map[common.Address]bool
}

type AirdropReceipt struct {
	Collection common.Address
	Account    common.Address
	Claimed    bool
	Seq        uint64
}

// AddAirdropMember marks account as eligible for the collection's airdrop.
// Requires the airdrop-manager role or root admin. Idempotent.
func (r *Registry) AddAirdropMember(caller, collection, account common.Address) error {
	if err := r.checkAirdropPrivilege(caller); err != nil {
		return err
	}
	if collection == (common.Address{}) || account == (common.Address{}) {
		return fmt.Errorf("zero address: %w", ErrInvalidInput)
	}

	drop := r.airdrop(collection)
	if _, member := drop.index[account]; member {
		return nil
	}

	drop.index[account] = len(drop.members)
	drop.members = append(drop.members, account)

	event.EmitEvent(event.AirdropMemberAddedEvent, AirdropReceipt{
		Collection: collection,
		Account:    account,
		Seq:        r.nextSeq(),
	})

	zap.L().With(
		zap.String("collection", collection.Hex()),
		zap.String("account", account.Hex()),
	).Info("Registry: AddAirdropMember")

	return nil
}

// MarkAirdropClaimed records a one-time claim. The account must be a member
// and must not have claimed before.
func (r *Registry) MarkAirdropClaimed(caller, collection, account common.Address) error {
	if err := r.checkAirdropPrivilege(caller); err != nil {
		return err
	}

	drop := r.airdrop(collection)
	if _, member := drop.index[account]; !member {
		return fmt.Errorf("account %s is not an airdrop member: %w", account.Hex(), ErrInvalidInput)
	}
	if drop.claimed[account] {
		return fmt.Errorf("airdrop already claimed by %s: %w", account.Hex(), ErrInvalidState)
	}

	drop.claimed[account] = true

	event.EmitEvent(event.AirdropClaimedEvent, AirdropReceipt{
		Collection: collection,
		Account:    account,
		Claimed:    true,
		Seq:        r.nextSeq(),
	})

	zap.L().With(
		zap.String("collection", collection.Hex()),
		zap.String("account", account.Hex()),
	).Info("Registry: MarkAirdropClaimed")

	return nil
}

func (r *Registry) IsAirdropMember(collection, account common.Address) bool {
	drop, exists := r.airdrops[collection]
	if !exists {
		return false
	}
	_, member := drop.index[account]

	return member
}

func (r *Registry) HasClaimedAirdrop(collection, account common.Address) bool {
	drop, exists := r.airdrops[collection]
	if !exists {
		return false
	}

	return drop.claimed[account]
}

// AirdropMembers returns the collection's membership array in insertion
// order.
func (r *Registry) AirdropMembers(collection common.Address) []common.Address {
	drop, exists := r.airdrops[collection]
	if !exists {
		return []common.Address{}
	}

	members := make([]common.Address, len(drop.members))
	copy(members, drop.members)

	return members
}

func (r *Registry) checkAirdropPrivilege(caller common.Address) error {
	if !r.HasRole(RootAdminRole, caller) && !r.HasRole(AirdropManagerRole, caller) {
		return fmt.Errorf("requires airdrop manager or root admin: %w", ErrUnauthorized)
	}

	return nil
}

func (r *Registry) airdrop(collection common.Address) *airdrop {
	drop, exists := r.airdrops[collection]
	if !exists {
		drop = &airdrop{
			index:   map[common.Address]int{},
			claimed: map[common.Address]bool{},
		}
		r.airdrops[collection] = drop
	}

	return drop
}
