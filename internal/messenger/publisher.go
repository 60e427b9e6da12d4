package messenger

import (
	"encoding/json"

	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/event"
	"github.com/artflect/marketplace-engine/internal/factory"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/presale"
	"go.uber.org/zap"
)

// Publisher fans committed engine receipts out to the message broker so
// downstream consumers do not need engine types; bodies are the same JSON
// entities the archive indexes. Sales and contributions move money, so they
// publish in confirm mode.
type Publisher struct {
	messenger     MessageService
	itemFactory   factory.ItemFactory
	actionFactory factory.MarketActionFactory
	nftFactory    factory.NftFactory
}

func NewPublisher(messenger MessageService, itemFactory factory.ItemFactory, actionFactory factory.MarketActionFactory, nftFactory factory.NftFactory) Publisher {
	return Publisher{messenger, itemFactory, actionFactory, nftFactory}
}

func (p Publisher) Subscribe() {
	event.AddEventListener(event.ItemListedEvent, p.OnItemListed)
	event.AddEventListener(event.ItemSoldEvent, p.OnItemSold)
	event.AddEventListener(event.TokenMintedEvent, p.OnTokenMinted)
	event.AddEventListener(event.PresaleContributionEvent, p.OnContribution)

	zap.L().Info("Publisher: Subscribed to engine events")
}

func (p Publisher) OnItemListed(el interface{}) {
	receipt := el.(market.ListingReceipt)

	p.publish(MarketListing, p.itemFactory.CreateItemFromListing(receipt), false)
}

func (p Publisher) OnItemSold(el interface{}) {
	receipt := el.(market.SaleReceipt)

	p.publish(MarketSale, p.actionFactory.CreateSaleAction(receipt), true)
}

func (p Publisher) OnTokenMinted(el interface{}) {
	receipt := el.(collection.TokenReceipt)

	p.publish(MarketMint, p.nftFactory.CreateNftFromMint(receipt), false)
}

func (p Publisher) OnContribution(el interface{}) {
	receipt := el.(presale.ContributionReceipt)

	p.publish(PresaleContribution, p.actionFactory.CreateContributionAction(receipt), true)
}

func (p Publisher) publish(item Item, body interface{}, reliable bool) {
	msg, err := json.Marshal(body)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Publisher: Failed to marshal message")
		return
	}

	if err := p.messenger.SendMessage(item, msg, reliable); err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Publisher: Failed to publish message")
	}
}
