package factory

import (
	"time"

	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/entity"
)

type NftFactory interface {
	CreateNftFromMint(receipt collection.TokenReceipt) entity.Nft
	CreateNftFromTransfer(receipt collection.TokenReceipt) entity.Nft
	CreateNftFromBurn(receipt collection.TokenReceipt) entity.Nft
	CreateOperatorApproval(receipt collection.ApprovalReceipt) entity.OperatorApproval
}

type nftFactory struct{}

func NewNftFactory() NftFactory {
	return nftFactory{}
}

func (f nftFactory) CreateNftFromMint(receipt collection.TokenReceipt) entity.Nft {
	now := time.Now().Unix()

	return entity.Nft{
		Contract:  hexAddr(receipt.Contract),
		TokenId:   receipt.TokenId,
		Owner:     hexAddr(receipt.Owner),
		TokenUri:  receipt.Uri,
		Seq:       receipt.Seq,
		MintedAt:  now,
		UpdatedAt: now,
	}
}

func (f nftFactory) CreateNftFromTransfer(receipt collection.TokenReceipt) entity.Nft {
	return entity.Nft{
		Contract:  hexAddr(receipt.Contract),
		TokenId:   receipt.TokenId,
		Owner:     hexAddr(receipt.Owner),
		TokenUri:  receipt.Uri,
		Seq:       receipt.Seq,
		UpdatedAt: time.Now().Unix(),
	}
}

func (f nftFactory) CreateNftFromBurn(receipt collection.TokenReceipt) entity.Nft {
	return entity.Nft{
		Contract:  hexAddr(receipt.Contract),
		TokenId:   receipt.TokenId,
		Owner:     hexAddr(receipt.Owner),
		TokenUri:  receipt.Uri,
		Burned:    true,
		Seq:       receipt.Seq,
		UpdatedAt: time.Now().Unix(),
	}
}

func (f nftFactory) CreateOperatorApproval(receipt collection.ApprovalReceipt) entity.OperatorApproval {
	return entity.OperatorApproval{
		Contract:  hexAddr(receipt.Contract),
		Owner:     hexAddr(receipt.Owner),
		Operator:  hexAddr(receipt.Operator),
		Approved:  receipt.Approved,
		Seq:       receipt.Seq,
		UpdatedAt: time.Now().Unix(),
	}
}
