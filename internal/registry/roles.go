package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RootAdminRole is the distinguished admin role. It is the zero hash rather
// than a derived name hash, matching the default-admin convention of EVM
// access control, and is assigned exactly once at Initialize. RoleIdOf never
// resolves to it; the zero hash doubles as the "no such role" sentinel.
var RootAdminRole = common.Hash{}

const (
	RootAdminName          = "ROOT_ADMIN"
	RoleManagerName        = "ROLE_MANAGER"
	AllowedCollectionsName = "ALLOWED_COLLECTIONS"
	PrivateSaleName        = "PRIVATE_SALE"
	PreSaleName            = "PRE_SALE"
	AirdropManagerName     = "AIRDROP_MANAGER"
	MinterName             = "MINTER"
)

// Built-in roles, registered during Initialize. Custom roles extend the set
// at runtime through RegisterRole.
var (
	RoleManagerRole        = NameHash(RoleManagerName)
	AllowedCollectionsRole = NameHash(AllowedCollectionsName)
	PrivateSaleRole        = NameHash(PrivateSaleName)
	PreSaleRole            = NameHash(PreSaleName)
	AirdropManagerRole     = NameHash(AirdropManagerName)
	MinterRole             = NameHash(MinterName)
)

// NameHash derives the id for a role name, deterministic and collision
// resistant across instances.
func NameHash(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}
