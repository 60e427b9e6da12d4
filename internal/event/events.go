package event

type Type string

const (
	ItemListedEvent       Type = "ItemListedEvent"
	ItemSoldEvent         Type = "ItemSoldEvent"
	ItemPriceChangedEvent Type = "ItemPriceChangedEvent"
	ItemToggledEvent      Type = "ItemToggledEvent"

	CollectionRegisteredEvent   Type = "CollectionRegisteredEvent"
	CollectionDeregisteredEvent Type = "CollectionDeregisteredEvent"
	CollectionUpdatedEvent      Type = "CollectionUpdatedEvent"

	RoleRegisteredEvent Type = "RoleRegisteredEvent"
	RoleGrantedEvent    Type = "RoleGrantedEvent"
	RoleRevokedEvent    Type = "RoleRevokedEvent"

	AirdropMemberAddedEvent Type = "AirdropMemberAddedEvent"
	AirdropClaimedEvent     Type = "AirdropClaimedEvent"

	TokenMintedEvent      Type = "TokenMintedEvent"
	TokenTransferredEvent Type = "TokenTransferredEvent"
	TokenBurnedEvent      Type = "TokenBurnedEvent"
	OperatorApprovalEvent Type = "OperatorApprovalEvent"

	PresaleContributionEvent Type = "PresaleContributionEvent"
)
