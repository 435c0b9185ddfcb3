package types

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockIdentifierExactlyOneSet(t *testing.T) {
	hash := common.HexToHash("0x01")

	byNumber := BlockIdentifierFromNumber(7)
	n, ok := byNumber.Number()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), n)
	_, ok = byNumber.Tag()
	assert.False(t, ok)
	_, ok = byNumber.Hash()
	assert.False(t, ok)

	byHash := BlockIdentifierFromHash(hash)
	h, ok := byHash.Hash()
	assert.True(t, ok)
	assert.Equal(t, hash, h)
	_, ok = byHash.Number()
	assert.False(t, ok)

	byTag := BlockIdentifierFromTag(BlockTagSafe)
	tag, ok := byTag.Tag()
	assert.True(t, ok)
	assert.Equal(t, BlockTagSafe, tag)
	_, ok = byTag.Number()
	assert.False(t, ok)
}

func TestBlockIdentifierNilIsLatest(t *testing.T) {
	var id *BlockIdentifier

	tag, ok := id.Tag()
	assert.True(t, ok)
	assert.Equal(t, BlockTagLatest, tag)
	assert.Equal(t, "latest", id.String())

	tag, ok = id.OrLatest().Tag()
	assert.True(t, ok)
	assert.Equal(t, BlockTagLatest, tag)
}

func TestBlockTagIsValid(t *testing.T) {
	for _, tag := range []BlockTag{
		BlockTagLatest, BlockTagEarliest, BlockTagPending, BlockTagSafe, BlockTagFinalized,
	} {
		assert.True(t, tag.IsValid(), tag)
	}

	assert.False(t, BlockTag("committed").IsValid())
	assert.False(t, BlockTag("").IsValid())
}

func TestNewBlockIdentifierFromBlockNumberOrHash(t *testing.T) {
	hash := "0x5a5b2a9a2e1a6f8c1b6a8ca3d3a6c1e0c8e1b3a0f2d7f0f86d1c6a1b2c3d4e5f"

	tests := []struct {
		input    string
		expected string
	}{
		{`"0x64"`, "#100"},
		{`"latest"`, "latest"},
		{`"earliest"`, "earliest"},
		{`"pending"`, "pending"},
		{`"safe"`, "safe"},
		{`"finalized"`, "finalized"},
		{`"` + hash + `"`, hash},
		{`{"blockHash":"` + hash + `"}`, hash},
		{`{"blockNumber":"0x1"}`, "#1"},
		{`{"blockNumber":"earliest"}`, "earliest"},
	}

	for _, tt := range tests {
		var bnh BlockNumberOrHash
		require.NoError(t, json.Unmarshal([]byte(tt.input), &bnh), tt.input)

		id, err := NewBlockIdentifierFromBlockNumberOrHash(bnh)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, id.String(), tt.input)
	}
}

func TestNewBlockIdentifierFromBlockNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"0x0"`, "#0"},
		{`"0x64"`, "#100"},
		{`"earliest"`, "earliest"},
		{`"latest"`, "latest"},
		{`"pending"`, "pending"},
		{`"safe"`, "safe"},
		{`"finalized"`, "finalized"},
	}

	for _, tt := range tests {
		var bn BlockNumber
		require.NoError(t, json.Unmarshal([]byte(tt.input), &bn), tt.input)

		id, err := NewBlockIdentifierFromBlockNumber(bn)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, id.String(), tt.input)

		data, err := json.Marshal(bn)
		require.NoError(t, err)
		assert.JSONEq(t, tt.input, string(data))
	}
}

func TestNewBlockIdentifierFromInvalidBlockNumber(t *testing.T) {
	_, err := NewBlockIdentifierFromBlockNumber(BlockNumber{})
	assert.Error(t, err)

	_, err = NewBlockIdentifierFromBlockNumberOrHash(BlockNumberOrHash{})
	assert.Error(t, err)

	for _, input := range []string{`"head"`, `"100"`, `100`, `"0xffffffffffffffff"`} {
		var bn BlockNumber
		assert.Error(t, json.Unmarshal([]byte(input), &bn), input)
	}

	var bnh BlockNumberOrHash
	assert.Error(t, json.Unmarshal([]byte(`{"blockNumber":"0x1","blockHash":"`+common.Hash{}.Hex()+`"}`), &bnh))
	assert.Error(t, json.Unmarshal([]byte(`"committed"`), &bnh))
}

func TestCanonicalBlockReference(t *testing.T) {
	byNumber := NewCanonicalBlockReferenceByNumber(100)
	n, ok := byNumber.Number()
	assert.True(t, ok)
	assert.Equal(t, uint64(100), n)
	_, ok = byNumber.Hash()
	assert.False(t, ok)
	assert.Equal(t, "#100", byNumber.String())

	hash := common.HexToHash("0xabcd")
	byHash := NewCanonicalBlockReferenceByHash(hash)
	h, ok := byHash.Hash()
	assert.True(t, ok)
	assert.Equal(t, hash, h)
	_, ok = byHash.Number()
	assert.False(t, ok)
	assert.Equal(t, hash.Hex(), byHash.String())
}

func TestRangeUint64(t *testing.T) {
	r := RangeUint64{From: 3, To: 5}

	assert.True(t, r.IsValid())
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(6))
	assert.Equal(t, "[3, 5]", r.String())

	assert.False(t, RangeUint64{From: 5, To: 3}.IsValid())
}
