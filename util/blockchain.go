package util

import (
	"encoding/binary"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// GetShortIdOfHash returns the first 8 bytes of the hash as a number with the highest bit
// cleared, which is used as an index column instead of the long hash string and fits in a
// signed BIGINT column.
func GetShortIdOfHash(hash common.Hash) uint64 {
	return binary.BigEndian.Uint64(hash[:8]) & math.MaxInt64
}
