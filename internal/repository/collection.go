package repository

import (
	"encoding/json"

	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

// CollectionRepository reads the archived collection registrations back on
// restore. Live registration state is served by the marketplace.
type CollectionRepository interface {
	GetAllCollections(size, page int) ([]entity.Collection, int64, error)
}

type collectionRepository struct {
	elastic elastic_search.Index
}

func NewCollectionRepository(elastic elastic_search.Index) CollectionRepository {
	return collectionRepository{elastic}
}

func (r collectionRepository) GetAllCollections(size, page int) ([]entity.Collection, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.CollectionIndex.Get()).
		Sort("registeredAt", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r collectionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Collection, int64, error) {
	collections := make([]entity.Collection, 0)

	if err != nil {
		return collections, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var collection entity.Collection
		if err := json.Unmarshal(hit.Source, &collection); err == nil {
			collections = append(collections, collection)
		}
	}

	return collections, results.TotalHits(), nil
}
