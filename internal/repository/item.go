package repository

import (
	"encoding/json"

	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

// ItemRepository reads the archived item ledger. Live item state is served
// by the marketplace itself; the archive is only read back on restore.
type ItemRepository interface {
	GetAllItems(size, page int) ([]entity.Item, int64, error)
}

type itemRepository struct {
	elastic elastic_search.Index
}

func NewItemRepository(elastic elastic_search.Index) ItemRepository {
	return itemRepository{elastic}
}

func (r itemRepository) GetAllItems(size, page int) ([]entity.Item, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.ItemIndex.Get()).
		Sort("itemId", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r itemRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Item, int64, error) {
	items := make([]entity.Item, 0)

	if err != nil {
		return items, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var item entity.Item
		if err := json.Unmarshal(hit.Source, &item); err == nil {
			items = append(items, item)
		}
	}

	return items, results.TotalHits(), nil
}
