package elastic_search

import (
	"fmt"

	"github.com/artflect/marketplace-engine/internal/config"
)

type Indices string

var (
	ItemIndex         Indices = "item"
	CollectionIndex   Indices = "collection"
	NftIndex          Indices = "nft"
	RoleIndex         Indices = "role"
	MarketActionIndex Indices = "marketaction"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
