package registry

import (
	"errors"
	"fmt"

	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Registry is the process-wide authorization state: named roles, the
// granted-role relation, whitelist membership arrays and per-collection
// airdrop tracking. Every privileged operation in the system consults it.
type Registry struct {
	initialized bool
	seq         uint64
	names       map[common.Hash]string
	nameOrder   []string
	members     map[common.Hash]map[common.Address]bool
	whitelists  map[common.Hash]*whitelist
	airdrops    map[common.Address]*airdrop
}

type GrantReceipt struct {
	RoleId      common.Hash
	RoleName    string
	Account     common.Address
	Whitelisted bool
	Revoked     bool
	Seq         uint64
}

type RoleReceipt struct {
	RoleId common.Hash
	Name   string
	Seq    uint64
}

func New() *Registry {
	return &Registry{
		names:      map[common.Hash]string{},
		members:    map[common.Hash]map[common.Address]bool{},
		whitelists: map[common.Hash]*whitelist{},
		airdrops:   map[common.Address]*airdrop{},
	}
}

// Initialize assigns the root admin exactly once and registers the built-in
// roles. A second call fails with ErrInvalidState.
func (r *Registry) Initialize(admin common.Address) error {
	if r.initialized {
		return fmt.Errorf("registry already initialized: %w", ErrInvalidState)
	}
	if admin == (common.Address{}) {
		return fmt.Errorf("zero admin address: %w", ErrInvalidInput)
	}

	r.initialized = true
	r.names[RootAdminRole] = RootAdminName
	r.setRole(RootAdminRole, admin, false)

	for _, name := range []string{
		RoleManagerName,
		AllowedCollectionsName,
		PrivateSaleName,
		PreSaleName,
		AirdropManagerName,
		MinterName,
	} {
		r.registerName(name)
	}

	zap.L().With(zap.String("admin", admin.Hex())).Info("Registry: Initialized")

	return nil
}

// RegisterRole makes a name grantable. Idempotent by name; root admin only.
func (r *Registry) RegisterRole(caller common.Address, name string) (common.Hash, error) {
	if !r.HasRole(RootAdminRole, caller) {
		return common.Hash{}, fmt.Errorf("register role requires root admin: %w", ErrUnauthorized)
	}
	if name == "" || name == RootAdminName {
		return common.Hash{}, fmt.Errorf("invalid role name: %w", ErrInvalidInput)
	}

	roleId := NameHash(name)
	if _, exists := r.names[roleId]; exists {
		zap.L().With(zap.String("name", name)).Debug("Registry: Role already registered")
		return roleId, nil
	}

	r.registerName(name)
	zap.L().With(zap.String("name", name), zap.String("roleId", roleId.Hex())).Info("Registry: RegisterRole")

	return roleId, nil
}

// Grant gives account the role. The caller must hold root admin or the
// role-manager role; granting the role-manager role or the root-admin role
// requires root admin specifically.
func (r *Registry) Grant(caller common.Address, roleId common.Hash, account common.Address) error {
	if err := r.checkGrantPrivilege(caller, roleId, account); err != nil {
		return err
	}

	r.setRole(roleId, account, false)

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("role", r.names[roleId]),
		zap.String("account", account.Hex()),
	).Info("Registry: Grant")

	return nil
}

// Revoke removes the role from account. The root-admin role is never
// revocable. Revoking a role where the caller's own possession equals the
// target's possession requires root admin; otherwise the role-manager role
// suffices.
func (r *Registry) Revoke(caller common.Address, roleId common.Hash, account common.Address) error {
	if roleId == RootAdminRole {
		return fmt.Errorf("root admin role is irrevocable: %w", ErrInvalidOperation)
	}
	if err := r.checkRevokePrivilege(caller, roleId, account); err != nil {
		return err
	}

	if !r.members[roleId][account] {
		zap.L().With(zap.String("account", account.Hex())).Debug("Registry: Revoke of ungranted role")
		return nil
	}

	r.unsetRole(roleId, account, false)

	zap.L().With(
		zap.String("caller", caller.Hex()),
		zap.String("role", r.names[roleId]),
		zap.String("account", account.Hex()),
	).Info("Registry: Revoke")

	return nil
}

// HasRole is a pure lookup, callable by anyone.
func (r *Registry) HasRole(roleId common.Hash, account common.Address) bool {
	return r.members[roleId][account]
}

func (r *Registry) IsRootAdmin(account common.Address) bool {
	return r.HasRole(RootAdminRole, account)
}

// RoleIdOf resolves a registered name to its id. Unregistered names resolve
// to the zero sentinel, which is never a grantable id for callers without
// root admin.
func (r *Registry) RoleIdOf(name string) common.Hash {
	roleId := NameHash(name)
	if _, exists := r.names[roleId]; !exists {
		return common.Hash{}
	}

	return roleId
}

// RoleName returns the registered name for an id.
func (r *Registry) RoleName(roleId common.Hash) (string, bool) {
	name, exists := r.names[roleId]

	return name, exists
}

// Roles lists registered role names in registration order, root admin first.
func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.nameOrder)+1)
	roles = append(roles, RootAdminName)
	roles = append(roles, r.nameOrder...)

	return roles
}

func (r *Registry) Members(roleId common.Hash) []common.Address {
	members := make([]common.Address, 0, len(r.members[roleId]))
	for account := range r.members[roleId] {
		members = append(members, account)
	}

	return members
}

func (r *Registry) checkGrantPrivilege(caller common.Address, roleId common.Hash, account common.Address) error {
	if account == (common.Address{}) {
		return fmt.Errorf("zero account address: %w", ErrInvalidInput)
	}
	if _, registered := r.names[roleId]; !registered {
		return fmt.Errorf("unregistered role: %w", ErrInvalidInput)
	}

	if roleId == RootAdminRole || roleId == RoleManagerRole {
		if !r.HasRole(RootAdminRole, caller) {
			return fmt.Errorf("granting %s requires root admin: %w", r.names[roleId], ErrUnauthorized)
		}
		return nil
	}

	if !r.HasRole(RootAdminRole, caller) && !r.HasRole(RoleManagerRole, caller) {
		return fmt.Errorf("grant requires root admin or role manager: %w", ErrUnauthorized)
	}

	return nil
}

func (r *Registry) checkRevokePrivilege(caller common.Address, roleId common.Hash, account common.Address) error {
	if _, registered := r.names[roleId]; !registered {
		return fmt.Errorf("unregistered role: %w", ErrInvalidInput)
	}

	if r.HasRole(roleId, caller) == r.HasRole(roleId, account) {
		if !r.HasRole(RootAdminRole, caller) {
			return fmt.Errorf("revoke requires root admin: %w", ErrUnauthorized)
		}
		return nil
	}

	if !r.HasRole(RootAdminRole, caller) && !r.HasRole(RoleManagerRole, caller) {
		return fmt.Errorf("revoke requires root admin or role manager: %w", ErrUnauthorized)
	}

	return nil
}

func (r *Registry) registerName(name string) {
	roleId := NameHash(name)
	r.names[roleId] = name
	r.nameOrder = append(r.nameOrder, name)
	r.seq++

	event.EmitEvent(event.RoleRegisteredEvent, RoleReceipt{RoleId: roleId, Name: name, Seq: r.seq})
}

func (r *Registry) setRole(roleId common.Hash, account common.Address, whitelisted bool) {
	if r.members[roleId] == nil {
		r.members[roleId] = map[common.Address]bool{}
	}
	r.members[roleId][account] = true
	r.seq++

	event.EmitEvent(event.RoleGrantedEvent, GrantReceipt{
		RoleId:      roleId,
		RoleName:    r.names[roleId],
		Account:     account,
		Whitelisted: whitelisted,
		Seq:         r.seq,
	})
}

func (r *Registry) unsetRole(roleId common.Hash, account common.Address, whitelisted bool) {
	delete(r.members[roleId], account)
	r.seq++

	event.EmitEvent(event.RoleRevokedEvent, GrantReceipt{
		RoleId:      roleId,
		RoleName:    r.names[roleId],
		Account:     account,
		Whitelisted: whitelisted,
		Revoked:     true,
		Seq:         r.seq,
	})
}

func (r *Registry) nextSeq() uint64 {
	r.seq++

	return r.seq
}
