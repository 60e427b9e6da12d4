package entity

import (
	"crypto/md5"
	"fmt"

	"github.com/gosimple/slug"
)

type Nft struct {
	Contract  string `json:"contract"`
	TokenId   uint64 `json:"tokenId"`
	Owner     string `json:"owner"`
	TokenUri  string `json:"tokenUri"`
	Burned    bool   `json:"burned"`
	Seq       uint64 `json:"seq"`
	MintedAt  int64  `json:"mintedAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (n Nft) Slug() string {
	return CreateNftSlug(n.TokenId, n.Contract)
}

func CreateNftSlug(tokenId uint64, contract string) string {
	return slug.Make(fmt.Sprintf("nft-%d-%s", tokenId, contract))
}

// OperatorApproval shares the nft index with Nft documents; the two are told
// apart by which fields exist.
type OperatorApproval struct {
	Contract  string `json:"contract"`
	Owner     string `json:"owner"`
	Operator  string `json:"operator"`
	Approved  bool   `json:"approved"`
	Seq       uint64 `json:"seq"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (o OperatorApproval) Slug() string {
	return CreateOperatorApprovalSlug(o.Contract, o.Owner, o.Operator)
}

func CreateOperatorApprovalSlug(contract, owner, operator string) string {
	data := []byte(fmt.Sprintf("approval-%s-%s-%s", contract, owner, operator))
	return fmt.Sprintf("%x", md5.Sum(data))
}
