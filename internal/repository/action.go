package repository

import (
	"encoding/json"
	"errors"

	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrMarketActionNotFound = errors.New("market action not found")
)

type MarketActionRepository interface {
	GetAllActions(size, page int) ([]entity.MarketAction, int64, error)
	GetActionsByItem(itemId uint64, size, page int) ([]entity.MarketAction, int64, error)
	GetActionsByType(actionType entity.ActionType, size, page int) ([]entity.MarketAction, int64, error)
	GetLatestAction() (*entity.MarketAction, error)
}

type marketActionRepository struct {
	elastic elastic_search.Index
}

func NewMarketActionRepository(elastic elastic_search.Index) MarketActionRepository {
	return marketActionRepository{elastic}
}

func (r marketActionRepository) GetAllActions(size, page int) ([]entity.MarketAction, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetActionsByItem(itemId uint64, size, page int) ([]entity.MarketAction, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(elastic.NewTermQuery("itemId", itemId)).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetActionsByType(actionType entity.ActionType, size, page int) ([]entity.MarketAction, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(elastic.NewTermQuery("action.keyword", string(actionType))).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetLatestAction() (*entity.MarketAction, error) {
	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Size(1).
		Sort("seq", false))

	return r.findOne(results, err)
}

func (r marketActionRepository) findOne(results *elastic.SearchResult, err error) (*entity.MarketAction, error) {
	if err != nil {
		return nil, err
	}

	if len(results.Hits.Hits) == 0 {
		return nil, ErrMarketActionNotFound
	}

	var action entity.MarketAction
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &action)

	return &action, err
}

func (r marketActionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketAction, int64, error) {
	actions := make([]entity.MarketAction, 0)

	if err != nil {
		return actions, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err == nil {
			actions = append(actions, action)
		}
	}

	return actions, results.TotalHits(), nil
}
