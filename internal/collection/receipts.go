package collection

import "github.com/ethereum/go-ethereum/common"

// Receipts are the payloads emitted on committed token mutations, the same
// contract the marketplace receipts follow: listeners persist them, the
// contract never reads them back.

type TokenReceipt struct {
	Contract common.Address
	TokenId  uint64
	Owner    common.Address
	From     common.Address
	Uri      string
	Seq      uint64
}

type ApprovalReceipt struct {
	Contract common.Address
	Owner    common.Address
	Operator common.Address
	Approved bool
	Seq      uint64
}
