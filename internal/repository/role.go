package repository

import (
	"encoding/json"

	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

// RoleRepository reads the archived grants and airdrop memberships back on
// restore. Live role state is served by the registry.
type RoleRepository interface {
	GetAllGrants(size, page int) ([]entity.RoleGrant, int64, error)
	GetAllAirdropMembers(size, page int) ([]entity.AirdropMember, int64, error)
}

type roleRepository struct {
	elastic elastic_search.Index
}

func NewRoleRepository(elastic elastic_search.Index) RoleRepository {
	return roleRepository{elastic}
}

func (r roleRepository) GetAllGrants(size, page int) ([]entity.RoleGrant, int64, error) {
	from := size*page - size

	// The role index also stores airdrop memberships; grants are the
	// documents that carry a roleId.
	results, err := search(r.elastic.GetClient().
		Search(elastic_search.RoleIndex.Get()).
		Query(elastic.NewExistsQuery("roleId")).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r roleRepository) GetAllAirdropMembers(size, page int) ([]entity.AirdropMember, int64, error) {
	from := size*page - size

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.RoleIndex.Get()).
		Query(elastic.NewExistsQuery("collection")).
		Sort("seq", true).
		Size(size).
		From(from))

	return r.findManyMembers(results, err)
}

func (r roleRepository) findMany(results *elastic.SearchResult, err error) ([]entity.RoleGrant, int64, error) {
	grants := make([]entity.RoleGrant, 0)

	if err != nil {
		return grants, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var grant entity.RoleGrant
		if err := json.Unmarshal(hit.Source, &grant); err == nil {
			grants = append(grants, grant)
		}
	}

	return grants, results.TotalHits(), nil
}

func (r roleRepository) findManyMembers(results *elastic.SearchResult, err error) ([]entity.AirdropMember, int64, error) {
	members := make([]entity.AirdropMember, 0)

	if err != nil {
		return members, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var member entity.AirdropMember
		if err := json.Unmarshal(hit.Source, &member); err == nil {
			members = append(members, member)
		}
	}

	return members, results.TotalHits(), nil
}
