package factory

import (
	"time"

	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/registry"
)

type RoleFactory interface {
	CreateRoleGrant(receipt registry.GrantReceipt) entity.RoleGrant
	CreateAirdropMember(receipt registry.AirdropReceipt) entity.AirdropMember
}

type roleFactory struct{}

func NewRoleFactory() RoleFactory {
	return roleFactory{}
}

func (f roleFactory) CreateRoleGrant(receipt registry.GrantReceipt) entity.RoleGrant {
	return entity.RoleGrant{
		RoleId:      receipt.RoleId.Hex(),
		RoleName:    receipt.RoleName,
		Account:     hexAddr(receipt.Account),
		Whitelisted: receipt.Whitelisted,
		Revoked:     receipt.Revoked,
		Seq:         receipt.Seq,
		GrantedAt:   time.Now().Unix(),
	}
}

func (f roleFactory) CreateAirdropMember(receipt registry.AirdropReceipt) entity.AirdropMember {
	return entity.AirdropMember{
		Collection: hexAddr(receipt.Collection),
		Account:    hexAddr(receipt.Account),
		Claimed:    receipt.Claimed,
		Seq:        receipt.Seq,
		AddedAt:    time.Now().Unix(),
	}
}
