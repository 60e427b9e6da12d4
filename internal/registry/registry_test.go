package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = common.HexToAddress("0xad00000000000000000000000000000000000001")
	manager = common.HexToAddress("0xa100000000000000000000000000000000000002")
	alice   = common.HexToAddress("0xa11ce00000000000000000000000000000000003")
	bob     = common.HexToAddress("0xb0b0000000000000000000000000000000000004")
	mallory = common.HexToAddress("0xbad0000000000000000000000000000000000005")
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	r := New()
	require.NoError(t, r.Initialize(admin))

	return r
}

func TestRegistry_Initialize(t *testing.T) {
	r := New()

	require.NoError(t, r.Initialize(admin))
	assert.True(t, r.HasRole(RootAdminRole, admin))
	assert.True(t, r.IsRootAdmin(admin))

	err := r.Initialize(admin)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRegistry_InitializeZeroAdmin(t *testing.T) {
	r := New()

	err := r.Initialize(common.Address{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	require.NoError(t, r.Initialize(admin))
}

func TestRegistry_BuiltInRolesRegistered(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, RoleManagerRole, r.RoleIdOf(RoleManagerName))
	assert.Equal(t, AllowedCollectionsRole, r.RoleIdOf(AllowedCollectionsName))
	assert.Equal(t, PrivateSaleRole, r.RoleIdOf(PrivateSaleName))
	assert.Equal(t, PreSaleRole, r.RoleIdOf(PreSaleName))
	assert.Equal(t, AirdropManagerRole, r.RoleIdOf(AirdropManagerName))
	assert.Equal(t, MinterRole, r.RoleIdOf(MinterName))
}

func TestRegistry_RegisterRole(t *testing.T) {
	r := newTestRegistry(t)

	roleId, err := r.RegisterRole(admin, "CURATOR")
	require.NoError(t, err)
	assert.Equal(t, NameHash("CURATOR"), roleId)
	assert.Equal(t, roleId, r.RoleIdOf("CURATOR"))

	again, err := r.RegisterRole(admin, "CURATOR")
	require.NoError(t, err)
	assert.Equal(t, roleId, again)
}

func TestRegistry_RegisterRoleUnauthorized(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.RegisterRole(mallory, "CURATOR")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, common.Hash{}, r.RoleIdOf("CURATOR"))
}

func TestRegistry_RegisterRoleInvalidName(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.RegisterRole(admin, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.RegisterRole(admin, RootAdminName)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegistry_RoleIdOfUnregisteredIsSentinel(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, common.Hash{}, r.RoleIdOf("NO_SUCH_ROLE"))
}

func TestRegistry_GrantByRootAdmin(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Grant(admin, MinterRole, alice))
	assert.True(t, r.HasRole(MinterRole, alice))
	assert.False(t, r.HasRole(MinterRole, bob))
}

func TestRegistry_GrantByRoleManager(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Grant(admin, RoleManagerRole, manager))

	require.NoError(t, r.Grant(manager, MinterRole, alice))
	assert.True(t, r.HasRole(MinterRole, alice))
}

func TestRegistry_GrantEscalationGuard(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Grant(admin, RoleManagerRole, manager))

	err := r.Grant(manager, RoleManagerRole, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, r.HasRole(RoleManagerRole, alice))

	err = r.Grant(manager, RootAdminRole, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, r.HasRole(RootAdminRole, alice))

	require.NoError(t, r.Grant(admin, RoleManagerRole, alice))
	assert.True(t, r.HasRole(RoleManagerRole, alice))
}

func TestRegistry_GrantUnauthorizedTwiceLeavesStateUnchanged(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Grant(mallory, MinterRole, mallory), ErrUnauthorized)
	assert.ErrorIs(t, r.Revoke(mallory, MinterRole, admin), ErrUnauthorized)

	assert.False(t, r.HasRole(MinterRole, mallory))
	assert.True(t, r.HasRole(RootAdminRole, admin))
}

func TestRegistry_GrantInvalidInput(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Grant(admin, MinterRole, common.Address{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = r.Grant(admin, NameHash("UNREGISTERED"), alice)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegistry_RootAdminIsIrrevocable(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Revoke(admin, RootAdminRole, admin), ErrInvalidOperation)
	assert.ErrorIs(t, r.Revoke(mallory, RootAdminRole, admin), ErrInvalidOperation)
	assert.True(t, r.HasRole(RootAdminRole, admin))
}

func TestRegistry_RevokeByRoleManager(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Grant(admin, RoleManagerRole, manager))
	require.NoError(t, r.Grant(admin, MinterRole, alice))

	require.NoError(t, r.Revoke(manager, MinterRole, alice))
	assert.False(t, r.HasRole(MinterRole, alice))
}

func TestRegistry_RevokeParityRequiresRootAdmin(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Grant(admin, RoleManagerRole, manager))
	require.NoError(t, r.Grant(admin, RoleManagerRole, alice))

	// both caller and target hold the role
	err := r.Revoke(manager, RoleManagerRole, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, r.HasRole(RoleManagerRole, alice))

	// self-revocation is the same parity case
	require.NoError(t, r.Grant(admin, MinterRole, manager))
	err = r.Revoke(manager, MinterRole, manager)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, r.Revoke(admin, RoleManagerRole, alice))
	assert.False(t, r.HasRole(RoleManagerRole, alice))
}

func TestRegistry_RevokeUngrantedIsNoop(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Grant(admin, RoleManagerRole, manager))
	require.NoError(t, r.Grant(admin, MinterRole, manager))

	// caller holds the role, target does not
	require.NoError(t, r.Revoke(manager, MinterRole, alice))
	assert.False(t, r.HasRole(MinterRole, alice))
}

func TestRegistry_Roles(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.RegisterRole(admin, "CURATOR")
	require.NoError(t, err)

	roles := r.Roles()
	assert.Equal(t, RootAdminName, roles[0])
	assert.Contains(t, roles, RoleManagerName)
	assert.Equal(t, "CURATOR", roles[len(roles)-1])
}

func TestRegistry_RoleName(t *testing.T) {
	r := newTestRegistry(t)

	name, exists := r.RoleName(MinterRole)
	require.True(t, exists)
	assert.Equal(t, MinterName, name)

	name, exists = r.RoleName(RootAdminRole)
	require.True(t, exists)
	assert.Equal(t, RootAdminName, name)

	_, exists = r.RoleName(NameHash("NO_SUCH_ROLE"))
	assert.False(t, exists)
}
