package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type Collection struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	FeeBps       uint64 `json:"feeBps"`
	Active       bool   `json:"active"`
	FirstParty   bool   `json:"firstParty"`
	RegisteredAt int64  `json:"registeredAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

func (c Collection) Slug() string {
	return CreateCollectionSlug(c.Address)
}

func CreateCollectionSlug(address string) string {
	return slug.Make(fmt.Sprintf("collection-%s", address))
}
