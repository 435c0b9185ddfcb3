package util

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rlpSample struct {
	Hash   common.Hash
	Number uint64
	Value  *big.Int
	Data   []byte
	Extra  *common.Hash `rlp:"nil"`
}

func TestRLPMarshal(t *testing.T) {
	extra := common.HexToHash("0x01")
	v := rlpSample{
		Hash:   common.HexToHash("0x4016c5b1675182700ef67b9df90c13ddf2e774b12385af63ba43576039b13f8a"),
		Number: 12345,
		Value:  big.NewInt(1_000_000_007),
		Data:   []byte{0xde, 0xad},
		Extra:  &extra,
	}

	data, err := MarshalRLP(&v)
	require.NoError(t, err)

	var v2 rlpSample
	require.NoError(t, UnmarshalRLP(data, &v2))

	assert.Equal(t, v.Hash, v2.Hash)
	assert.Equal(t, v.Number, v2.Number)
	assert.Equal(t, v.Value.String(), v2.Value.String())
	assert.Equal(t, v.Data, v2.Data)
	assert.Equal(t, extra, *v2.Extra)

	var nilSample *rlpSample
	data, err = MarshalRLP(nilSample)
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestRLPUnmarshalCorrupted(t *testing.T) {
	var v rlpSample
	assert.Error(t, UnmarshalRLP([]byte{0xc8, 0x01}, &v))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "evm:rcpt:0000000000000001", RedisKey("evm", "rcpt", "0000000000000001"))
	assert.Equal(t, "evm:7", RedisKey("evm", 7))
}

func TestNewRedisClientInvalidUrl(t *testing.T) {
	_, err := NewRedisClient("mysql://127.0.0.1:3306")
	assert.Error(t, err)
}
