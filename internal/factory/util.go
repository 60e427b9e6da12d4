package factory

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// hexAddr lowercases addresses so term queries stay case-stable. The zero
// address maps to the empty string.
func hexAddr(address common.Address) string {
	if address == (common.Address{}) {
		return ""
	}

	return strings.ToLower(address.Hex())
}
