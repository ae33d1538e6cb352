package actions

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// EthereumAddress is the raw 20-byte address from a verification message.
type EthereumAddress []byte

// String renders the address as lowercase 0x-prefixed hex.
func (a EthereumAddress) String() string {
	return "0x" + hex.EncodeToString(a)
}

// Checksum renders the address in EIP-55 mixed case.
func (a EthereumAddress) Checksum() string {
	lower := hex.EncodeToString(a)
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(lower))
	sum := h.Sum(nil)

	var sb strings.Builder
	sb.Grow(2 + len(lower))
	sb.WriteString("0x")
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
