package repository

import (
	"encoding/json"
	"errors"

	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrNftNotFound = errors.New("nft not found")
)

type NftRepository interface {
	GetAllNfts(size, page int) ([]entity.Nft, int64, error)
	GetNftsByContract(contract string, size, page int) ([]entity.Nft, int64, error)
	GetNft(contract string, tokenId uint64) (*entity.Nft, error)
	GetAllOperatorApprovals(size, page int) ([]entity.OperatorApproval, int64, error)
}

type nftRepository struct {
	elastic elastic_search.Index
}

func NewNftRepository(elastic elastic_search.Index) NftRepository {
	return nftRepository{elastic}
}

func (r nftRepository) GetAllNfts(size, page int) ([]entity.Nft, int64, error) {
	from := size*page - size

	// The nft index also stores operator approvals; tokens are the
	// documents that carry a tokenId.
	results, err := search(r.elastic.GetClient().
		Search(elastic_search.NftIndex.Get()).
		Query(elastic.NewExistsQuery("tokenId")).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r nftRepository) GetNftsByContract(contract string, size, page int) ([]entity.Nft, int64, error) {
	from := size*page - size

	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewExistsQuery("tokenId"),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.NftIndex.Get()).
		Query(query).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r nftRepository) GetNft(contract string, tokenId uint64) (*entity.Nft, error) {
	pendingRequest := r.elastic.GetRequest(entity.CreateNftSlug(tokenId, contract))
	if pendingRequest != nil {
		pendingNft := pendingRequest.Entity.(entity.Nft)
		return &pendingNft, nil
	}

	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewTermQuery("tokenId", tokenId),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.NftIndex.Get()).
		Query(query).
		Size(1))

	return r.findOne(results, err)
}

func (r nftRepository) GetAllOperatorApprovals(size, page int) ([]entity.OperatorApproval, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.NftIndex.Get()).
		Query(elastic.NewExistsQuery("operator")).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findManyApprovals(results, err)
}

func (r nftRepository) findOne(results *elastic.SearchResult, err error) (*entity.Nft, error) {
	if err != nil {
		return nil, err
	}

	if len(results.Hits.Hits) == 0 {
		return nil, ErrNftNotFound
	}

	var nft entity.Nft
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &nft)

	return &nft, err
}

func (r nftRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Nft, int64, error) {
	nfts := make([]entity.Nft, 0)

	if err != nil {
		return nfts, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var nft entity.Nft
		if err := json.Unmarshal(hit.Source, &nft); err == nil {
			nfts = append(nfts, nft)
		}
	}

	return nfts, results.TotalHits(), nil
}

func (r nftRepository) findManyApprovals(results *elastic.SearchResult, err error) ([]entity.OperatorApproval, int64, error) {
	approvals := make([]entity.OperatorApproval, 0)

	if err != nil {
		return approvals, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var approval entity.OperatorApproval
		if err := json.Unmarshal(hit.Source, &approval); err == nil {
			approvals = append(approvals, approval)
		}
	}

	return approvals, results.TotalHits(), nil
}
