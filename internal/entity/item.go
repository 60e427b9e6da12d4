package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type Item struct {
	ItemId     uint64 `json:"itemId"`
	Collection string `json:"collection"`
	TokenId    uint64 `json:"tokenId"`
	Price      string `json:"price"`
	Seller     string `json:"seller"`
	Buyer      string `json:"buyer"`
	Active     bool   `json:"active"`
	Sold       bool   `json:"sold"`
	ListedAt   int64  `json:"listedAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

func (i Item) Slug() string {
	return CreateItemSlug(i.ItemId)
}

func CreateItemSlug(itemId uint64) string {
	return slug.Make(fmt.Sprintf("item-%d", itemId))
}
