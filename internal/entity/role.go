package entity

import (
	"crypto/md5"
	"fmt"
)

type RoleGrant struct {
	RoleId      string `json:"roleId"`
	RoleName    string `json:"roleName"`
	Account     string `json:"account"`
	Whitelisted bool   `json:"whitelisted"`
	Revoked     bool   `json:"revoked"`
	Seq         uint64 `json:"seq"`
	GrantedAt   int64  `json:"grantedAt"`
}

func (r RoleGrant) Slug() string {
	return CreateRoleGrantSlug(r.RoleId, r.Account)
}

func CreateRoleGrantSlug(roleId, account string) string {
	data := []byte(fmt.Sprintf("rolegrant-%s-%s", roleId, account))
	return fmt.Sprintf("%x", md5.Sum(data))
}

type AirdropMember struct {
	Collection string `json:"collection"`
	Account    string `json:"account"`
	Claimed    bool   `json:"claimed"`
	Seq        uint64 `json:"seq"`
	AddedAt    int64  `json:"addedAt"`
}

func (a AirdropMember) Slug() string {
	return CreateAirdropMemberSlug(a.Collection, a.Account)
}

func CreateAirdropMemberSlug(collection, account string) string {
	data := []byte(fmt.Sprintf("airdrop-%s-%s", collection, account))
	return fmt.Sprintf("%x", md5.Sum(data))
}
