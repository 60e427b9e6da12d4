package archive

import (
	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/internal/factory"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/presale"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Archive bridges the in-memory engine and elasticsearch. It listens to
// committed-mutation events, converts receipts to entities and feeds the
// write-behind index; Restore replays the archived state into an empty
// engine at boot.
type Archive interface {
	Subscribe()
	Restore(admin common.Address) error
	Persist() int

	OnItemListed(el interface{})
	OnItemSold(el interface{})
	OnItemPriceChanged(el interface{})
	OnItemToggled(el interface{})
	OnCollectionRegistered(el interface{})
	OnCollectionDeregistered(el interface{})
	OnCollectionUpdated(el interface{})
	OnRoleGranted(el interface{})
	OnRoleRevoked(el interface{})
	OnAirdropMemberAdded(el interface{})
	OnAirdropClaimed(el interface{})
	OnTokenMinted(el interface{})
	OnTokenTransferred(el interface{})
	OnTokenBurned(el interface{})
	OnOperatorApproval(el interface{})
	OnContribution(el interface{})
}

type archive struct {
	elastic           elastic_search.Index
	marketplace       *market.Marketplace
	reg               *registry.Registry
	resolver          *collection.Resolver
	itemFactory       factory.ItemFactory
	collectionFactory factory.CollectionFactory
	roleFactory       factory.RoleFactory
	actionFactory     factory.MarketActionFactory
	nftFactory        factory.NftFactory
	itemRepo          repository.ItemRepository
	collectionRepo    repository.CollectionRepository
	roleRepo          repository.RoleRepository
	nftRepo           repository.NftRepository
}

func NewArchive(
	elastic elastic_search.Index,
	marketplace *market.Marketplace,
	reg *registry.Registry,
	resolver *collection.Resolver,
	itemFactory factory.ItemFactory,
	collectionFactory factory.CollectionFactory,
	roleFactory factory.RoleFactory,
	actionFactory factory.MarketActionFactory,
	nftFactory factory.NftFactory,
	itemRepo repository.ItemRepository,
	collectionRepo repository.CollectionRepository,
	roleRepo repository.RoleRepository,
	nftRepo repository.NftRepository,
) Archive {
	return archive{
		elastic,
		marketplace,
		reg,
		resolver,
		itemFactory,
		collectionFactory,
		roleFactory,
		actionFactory,
		nftFactory,
		itemRepo,
		collectionRepo,
		roleRepo,
		nftRepo,
	}
}

// Subscribe attaches the archive to the engine's event stream. The whole
// archive consumes one ordered group, so a document create is always indexed
// before an update merges into it. Call after Restore so the replay does not
// write back to the index.
func (a archive) Subscribe() {
	event.AddEventListeners(map[event.Type]func(msg interface{}){
		event.ItemListedEvent:             a.OnItemListed,
		event.ItemSoldEvent:               a.OnItemSold,
		event.ItemPriceChangedEvent:       a.OnItemPriceChanged,
		event.ItemToggledEvent:            a.OnItemToggled,
		event.CollectionRegisteredEvent:   a.OnCollectionRegistered,
		event.CollectionDeregisteredEvent: a.OnCollectionDeregistered,
		event.CollectionUpdatedEvent:      a.OnCollectionUpdated,
		event.RoleGrantedEvent:            a.OnRoleGranted,
		event.RoleRevokedEvent:            a.OnRoleRevoked,
		event.AirdropMemberAddedEvent:     a.OnAirdropMemberAdded,
		event.AirdropClaimedEvent:         a.OnAirdropClaimed,
		event.TokenMintedEvent:            a.OnTokenMinted,
		event.TokenTransferredEvent:       a.OnTokenTransferred,
		event.TokenBurnedEvent:            a.OnTokenBurned,
		event.OperatorApprovalEvent:       a.OnOperatorApproval,
		event.PresaleContributionEvent:    a.OnContribution,
	})

	zap.L().Info("Archive: Subscribed to engine events")
}

func (a archive) Persist() int {
	return a.elastic.Persist()
}

func (a archive) OnItemListed(el interface{}) {
	receipt := el.(market.ListingReceipt)

	item := a.itemFactory.CreateItemFromListing(receipt)
	a.elastic.AddIndexRequest(elastic_search.ItemIndex.Get(), item, elastic_search.ItemCreate)

	action := a.actionFactory.CreateListingAction(receipt)
	a.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketActionCreate)

	a.elastic.BatchPersist()
}

func (a archive) OnItemSold(el interface{}) {
	receipt := el.(market.SaleReceipt)

	item := a.itemFactory.CreateItemFromSale(receipt)
	a.elastic.AddUpdateRequest(elastic_search.ItemIndex.Get(), item, elastic_search.ItemSale)

	action := a.actionFactory.CreateSaleAction(receipt)
	a.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketActionCreate)

	a.elastic.BatchPersist()
}

func (a archive) OnItemPriceChanged(el interface{}) {
	receipt := el.(market.PriceReceipt)

	item := a.itemFactory.CreateItemFromPriceChange(receipt)
	a.elastic.AddUpdateRequest(elastic_search.ItemIndex.Get(), item, elastic_search.ItemPriceUpdate)

	action := a.actionFactory.CreatePriceChangeAction(receipt)
	a.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketActionCreate)

	a.elastic.BatchPersist()
}

func (a archive) OnItemToggled(el interface{}) {
	receipt := el.(market.ToggleReceipt)

	item := a.itemFactory.CreateItemFromToggle(receipt)
	a.elastic.AddUpdateRequest(elastic_search.ItemIndex.Get(), item, elastic_search.ItemToggle)

	action := a.actionFactory.CreateToggleAction(receipt)
	a.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketActionCreate)

	a.elastic.BatchPersist()
}

func (a archive) OnCollectionRegistered(el interface{}) {
	receipt := el.(market.CollectionReceipt)

	c := a.collectionEntity(receipt)
	a.elastic.AddIndexRequest(elastic_search.CollectionIndex.Get(), c, elastic_search.CollectionCreate)

	a.elastic.BatchPersist()
}

func (a archive) OnCollectionDeregistered(el interface{}) {
	receipt := el.(market.CollectionReceipt)

	c := a.collectionEntity(receipt)
	c.Active = false
	a.elastic.AddUpdateRequest(elastic_search.CollectionIndex.Get(), c, elastic_search.CollectionRemove)

	a.elastic.BatchPersist()
}

func (a archive) OnCollectionUpdated(el interface{}) {
	receipt := el.(market.CollectionReceipt)

	c := a.collectionEntity(receipt)
	a.elastic.AddUpdateRequest(elastic_search.CollectionIndex.Get(), c, elastic_search.CollectionUpdate)

	a.elastic.BatchPersist()
}

func (a archive) OnRoleGranted(el interface{}) {
	receipt := el.(registry.GrantReceipt)

	grant := a.roleFactory.CreateRoleGrant(receipt)
	a.elastic.AddIndexRequest(elastic_search.RoleIndex.Get(), grant, elastic_search.RoleGrant)

	a.elastic.BatchPersist()
}

func (a archive) OnRoleRevoked(el interface{}) {
	receipt := el.(registry.GrantReceipt)

	grant := a.roleFactory.CreateRoleGrant(receipt)
	a.elastic.AddUpdateRequest(elastic_search.RoleIndex.Get(), grant, elastic_search.RoleRevoke)

	a.elastic.BatchPersist()
}

func (a archive) OnAirdropMemberAdded(el interface{}) {
	receipt := el.(registry.AirdropReceipt)

	member := a.roleFactory.CreateAirdropMember(receipt)
	a.elastic.AddIndexRequest(elastic_search.RoleIndex.Get(), member, elastic_search.AirdropAdd)

	a.elastic.BatchPersist()
}

func (a archive) OnAirdropClaimed(el interface{}) {
	receipt := el.(registry.AirdropReceipt)

	member := a.roleFactory.CreateAirdropMember(receipt)
	a.elastic.AddUpdateRequest(elastic_search.RoleIndex.Get(), member, elastic_search.AirdropClaim)

	a.elastic.BatchPersist()
}

func (a archive) OnTokenMinted(el interface{}) {
	receipt := el.(collection.TokenReceipt)

	nft := a.nftFactory.CreateNftFromMint(receipt)
	a.elastic.AddIndexRequest(elastic_search.NftIndex.Get(), nft, elastic_search.NftCreate)

	a.elastic.BatchPersist()
}

// OnTokenTransferred updates the archived token in place. The receipt has no
// mint details, so the current document is fetched and mutated rather than
// rebuilt; a bare update doc would blank the fields the receipt cannot know.
func (a archive) OnTokenTransferred(el interface{}) {
	receipt := el.(collection.TokenReceipt)

	update := a.nftFactory.CreateNftFromTransfer(receipt)
	nft, err := a.nftRepo.GetNft(update.Contract, update.TokenId)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("contract", update.Contract),
			zap.Uint64("tokenId", update.TokenId),
		).Error("Archive: Failed to find nft in index")
		return
	}

	nft.Owner = update.Owner
	nft.Seq = update.Seq
	nft.UpdatedAt = update.UpdatedAt

	a.elastic.AddUpdateRequest(elastic_search.NftIndex.Get(), *nft, elastic_search.NftTransfer)

	a.elastic.BatchPersist()
}

func (a archive) OnTokenBurned(el interface{}) {
	receipt := el.(collection.TokenReceipt)

	update := a.nftFactory.CreateNftFromBurn(receipt)
	nft, err := a.nftRepo.GetNft(update.Contract, update.TokenId)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("contract", update.Contract),
			zap.Uint64("tokenId", update.TokenId),
		).Error("Archive: Failed to find nft in index")
		return
	}

	nft.Burned = true
	nft.Seq = update.Seq
	nft.UpdatedAt = update.UpdatedAt

	a.elastic.AddUpdateRequest(elastic_search.NftIndex.Get(), *nft, elastic_search.NftBurn)

	a.elastic.BatchPersist()
}

// OnOperatorApproval always indexes; an approval flips between granted and
// revoked under the same slug, so the latest write wins.
func (a archive) OnOperatorApproval(el interface{}) {
	receipt := el.(collection.ApprovalReceipt)

	approval := a.nftFactory.CreateOperatorApproval(receipt)
	a.elastic.AddIndexRequest(elastic_search.NftIndex.Get(), approval, elastic_search.ApprovalSet)

	a.elastic.BatchPersist()
}

func (a archive) OnContribution(el interface{}) {
	receipt := el.(presale.ContributionReceipt)

	action := a.actionFactory.CreateContributionAction(receipt)
	a.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketActionCreate)

	a.elastic.BatchPersist()
}

// collectionEntity enriches the registration receipt with the details the
// contract itself declares, when it is still resolvable.
func (a archive) collectionEntity(receipt market.CollectionReceipt) entity.Collection {
	name, symbol := "", ""
	firstParty := false
	if c, exists := a.resolver.Get(receipt.Registration.Address); exists {
		name = c.Name()
		symbol = c.Symbol()
		firstParty = c.FirstParty()
	}

	return a.collectionFactory.CreateCollectionFromRegistration(receipt.Registration, name, symbol, firstParty)
}
