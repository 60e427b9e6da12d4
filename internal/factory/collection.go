package factory

import (
	"time"

	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/market"
)

type CollectionFactory interface {
	CreateCollectionFromRegistration(registration market.Registration, name, symbol string, firstParty bool) entity.Collection
}

type collectionFactory struct{}

func NewCollectionFactory() CollectionFactory {
	return collectionFactory{}
}

// CreateCollectionFromRegistration merges the marketplace registration with
// the details the contract itself declares. The caller resolves those.
func (f collectionFactory) CreateCollectionFromRegistration(registration market.Registration, name, symbol string, firstParty bool) entity.Collection {
	return entity.Collection{
		Address:      hexAddr(registration.Address),
		Name:         name,
		Symbol:       symbol,
		FeeBps:       registration.FeeBps,
		Active:       registration.Active,
		FirstParty:   firstParty,
		RegisteredAt: registration.RegisteredAt.Unix(),
		UpdatedAt:    time.Now().Unix(),
	}
}
