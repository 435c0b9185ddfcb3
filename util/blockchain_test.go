package util

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestGetShortIdOfHash(t *testing.T) {
	v := GetShortIdOfHash(common.HexToHash("0x255aeaf1dbc7d18feeb232f99fdca8adc72d68f5a5da9081b0315507f8005674"))
	assert.Equal(t, uint64(0x255aeaf1dbc7d18f), v)

	v = GetShortIdOfHash(common.HexToHash("0xf55aeaf1dbc7d18feeb232f99fdca8adc72d68f5a5da9081b0315507f8005674"))
	assert.Equal(t, uint64(0x755aeaf1dbc7d18f), v)
	assert.LessOrEqual(t, v, uint64(math.MaxInt64))

	assert.Zero(t, GetShortIdOfHash(common.Hash{}))
}
