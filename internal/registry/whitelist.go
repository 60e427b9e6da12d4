package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// whitelist tracks an ordered membership array alongside a value to index
// map so removal never relies on a caller-supplied position.
type whitelist struct {
	members []common.Address
	index   map[common.Address]int
}

// AddToWhitelist grants roleId to account and appends it to the role's
// ordered membership array. Adding an existing member is a no-op.
func (r *Registry) AddToWhitelist(caller common.Address, roleId common.Hash, account common.Address) error {
	if err := r.checkGrantPrivilege(caller, roleId, account); err != nil {
		return err
	}

	wl := r.whitelist(roleId)
	if _, member := wl.index[account]; member {
		zap.L().With(zap.String("account", account.Hex())).Debug("Registry: Already whitelisted")
		return nil
	}

	r.setRole(roleId, account, true)
	wl.index[account] = len(wl.members)
	wl.members = append(wl.members, account)

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("role", r.names[roleId]),
		zap.String("account", account.Hex()),
	).Info("Registry: AddToWhitelist")

	return nil
}

// RemoveFromWhitelist revokes the role and swap-removes account from the
// membership array. The position comes from the registry's own index, so
// the wrong element can never be removed. Removing a non-member fails with
// ErrInvalidInput.
func (r *Registry) RemoveFromWhitelist(caller common.Address, roleId common.Hash, account common.Address) error {
	if roleId == RootAdminRole {
		return fmt.Errorf("root admin role is irrevocable: %w", ErrInvalidOperation)
	}
	if err := r.checkRevokePrivilege(caller, roleId, account); err != nil {
		return err
	}

	wl := r.whitelist(roleId)
	position, member := wl.index[account]
	if !member {
		return fmt.Errorf("account %s is not whitelisted: %w", account.Hex(), ErrInvalidInput)
	}

	r.unsetRole(roleId, account, true)

	last := len(wl.members) - 1
	if position != last {
		moved := wl.members[last]
		wl.members[position] = moved
		wl.index[moved] = position
	}
	wl.members = wl.members[:last]
	delete(wl.index, account)

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("role", r.names[roleId]),
		zap.String("account", account.Hex()),
	).Info("Registry: RemoveFromWhitelist")

	return nil
}

// WhitelistMembers returns the ordered membership array for a role.
func (r *Registry) WhitelistMembers(roleId common.Hash) []common.Address {
	wl, exists := r.whitelists[roleId]
	if !exists {
		return []common.Address{}
	}

	members := make([]common.Address, len(wl.members))
	copy(members, wl.members)

	return members
}

func (r *Registry) whitelist(roleId common.Hash) *whitelist {
	wl, exists := r.whitelists[roleId]
	if !exists {
		wl = &whitelist{index: map[common.Address]int{}}
		r.whitelists[roleId] = wl
	}

	return wl
}
