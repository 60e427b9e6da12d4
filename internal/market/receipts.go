package market

import "math/big"

// Receipts are the payloads emitted on committed mutations. Listeners
// persist and publish them; the engine itself never reads them back.

type ListingReceipt struct {
	Item Item
	Seq  uint64
}

type SaleReceipt struct {
	Item     Item
	Required *big.Int
	Fee      *big.Int
	Royalty  *big.Int
	Donation *big.Int
	Proceeds *big.Int
	Seq      uint64
}

type PriceReceipt struct {
	Item     Item
	OldPrice *big.Int
	Seq      uint64
}

type ToggleReceipt struct {
	Item Item
	Seq  uint64
}

type CollectionReceipt struct {
	Registration Registration
	Removed      bool
	Seq          uint64
}
