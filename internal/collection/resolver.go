package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Resolver maps collection addresses to deployed contract instances. The
// marketplace stores only addresses and resolves them on use, so neither
// side holds a live reference to the other.
type Resolver struct {
	contracts map[common.Address]*Contract
	order     []common.Address
}

func NewResolver() *Resolver {
	return &Resolver{contracts: map[common.Address]*Contract{}}
}

func (r *Resolver) Register(contract *Contract) {
	address := contract.Address()
	if _, exists := r.contracts[address]; !exists {
		r.order = append(r.order, address)
	}
	r.contracts[address] = contract

	zap.L().With(zap.String("contract", address.Hex())).Debug("Collection: Resolver register")
}

func (r *Resolver) Get(address common.Address) (*Contract, bool) {
	contract, exists := r.contracts[address]

	return contract, exists
}

// Addresses lists registered collections in registration order.
func (r *Resolver) Addresses() []common.Address {
	addresses := make([]common.Address, len(r.order))
	copy(addresses, r.order)

	return addresses
}
