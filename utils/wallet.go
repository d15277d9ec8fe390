package utils

import "github.com/ethereum/go-ethereum/common"

// IsWalletAddress reports whether addr is a 0x-prefixed EVM address.
func IsWalletAddress(addr string) bool {
	return len(addr) == 42 && common.IsHexAddress(addr)
}
