package entity

import (
	"crypto/md5"
	"fmt"
)

type MarketAction struct {
	ItemId     uint64     `json:"itemId"`
	Collection string     `json:"collection"`
	TokenId    uint64     `json:"tokenId"`
	Action     ActionType `json:"action"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Cost       string     `json:"cost"`
	Fee        string     `json:"fee"`
	Royalty    string     `json:"royalty"`
	Donation   string     `json:"donation"`
	Proceeds   string     `json:"proceeds"`
	Seq        uint64     `json:"seq"`
	OccurredAt int64      `json:"occurredAt"`
}

type ActionType string

const (
	ListingAction      ActionType = "listing"
	SaleAction         ActionType = "sale"
	PriceChangeAction  ActionType = "priceChange"
	ToggleAction       ActionType = "toggle"
	ContributionAction ActionType = "contribution"
)

func (m MarketAction) Slug() string {
	return CreateMarketActionSlug(m.ItemId, m.Seq, string(m.Action))
}

func CreateMarketActionSlug(itemId, seq uint64, action string) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%d-%s", itemId, seq, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
