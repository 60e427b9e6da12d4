package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitelist_AddGrantsAndAppends(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, alice))
	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, bob))

	assert.True(t, r.HasRole(PrivateSaleRole, alice))
	assert.True(t, r.HasRole(PrivateSaleRole, bob))
	assert.Equal(t, []common.Address{alice, bob}, r.WhitelistMembers(PrivateSaleRole))
}

func TestWhitelist_AddIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PreSaleRole, alice))
	require.NoError(t, r.AddToWhitelist(admin, PreSaleRole, alice))

	assert.Equal(t, []common.Address{alice}, r.WhitelistMembers(PreSaleRole))
}

func TestWhitelist_AddUnauthorized(t *testing.T) {
	r := newTestRegistry(t)

	err := r.AddToWhitelist(mallory, PrivateSaleRole, mallory)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, r.WhitelistMembers(PrivateSaleRole))
}

func TestWhitelist_RemoveMiddleMember(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, alice))
	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, bob))
	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, mallory))

	require.NoError(t, r.RemoveFromWhitelist(admin, PrivateSaleRole, alice))

	assert.False(t, r.HasRole(PrivateSaleRole, alice))
	assert.Equal(t, []common.Address{mallory, bob}, r.WhitelistMembers(PrivateSaleRole))

	// the moved element is still removable by value
	require.NoError(t, r.RemoveFromWhitelist(admin, PrivateSaleRole, mallory))
	assert.Equal(t, []common.Address{bob}, r.WhitelistMembers(PrivateSaleRole))
}

func TestWhitelist_RemoveLastMember(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PreSaleRole, alice))
	require.NoError(t, r.AddToWhitelist(admin, PreSaleRole, bob))

	require.NoError(t, r.RemoveFromWhitelist(admin, PreSaleRole, bob))
	assert.Equal(t, []common.Address{alice}, r.WhitelistMembers(PreSaleRole))

	require.NoError(t, r.RemoveFromWhitelist(admin, PreSaleRole, alice))
	assert.Empty(t, r.WhitelistMembers(PreSaleRole))
}

func TestWhitelist_RemoveNonMember(t *testing.T) {
	r := newTestRegistry(t)

	err := r.RemoveFromWhitelist(admin, PrivateSaleRole, alice)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWhitelist_ReAddAfterRemove(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, alice))
	require.NoError(t, r.RemoveFromWhitelist(admin, PrivateSaleRole, alice))
	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, alice))

	assert.True(t, r.HasRole(PrivateSaleRole, alice))
	assert.Equal(t, []common.Address{alice}, r.WhitelistMembers(PrivateSaleRole))
}

func TestWhitelist_MembersReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.AddToWhitelist(admin, PrivateSaleRole, alice))

	members := r.WhitelistMembers(PrivateSaleRole)
	members[0] = mallory

	assert.Equal(t, []common.Address{alice}, r.WhitelistMembers(PrivateSaleRole))
}
