package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Conflux-Chain/confura-evm/rpc/ethbridge"
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/store/memdb"
	"github.com/Conflux-Chain/confura-evm/test"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCacheable(t *testing.T) {
	hash := common.HexToHash("0x1f")

	testCases := []struct {
		filter    store.Filter
		cacheable bool
	}{
		{store.NewFilterBuilder(store.KindReceipt).WithTxHash(hash).Build(), true},
		{store.NewFilterBuilder(store.KindTransaction).WithTxHash(hash).Build(), true},
		{store.NewFilterBuilder(store.KindHeader).WithBlockHash(hash).Build(), true},
		{store.NewFilterBuilder(store.KindReceipt).WithTxHash(hash).WithBlockNumber(1).Build(), false},
		{store.NewFilterBuilder(store.KindReceipt).WithTxHash(hash).WithBlockHash(hash).Build(), false},
		{store.NewFilterBuilder(store.KindTransaction).WithBlockHash(hash).WithTxIndex(0).Build(), false},
		{store.NewFilterBuilder(store.KindWithdrawal).WithBlockHash(hash).Build(), false},
		{store.NewFilterBuilder(store.KindHeader).WithBlockNumber(1).Build(), false},
		{store.NewFilterBuilder(store.KindHeader).WithBlockNumberRange(types.RangeUint64{From: 1, To: 2}).Build(), false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.cacheable, isCacheable(tc.filter), tc.filter.String())
	}
}

func TestCacheKey(t *testing.T) {
	hash := common.HexToHash("0x1f")

	k1 := cacheKey(store.NewFilterBuilder(store.KindReceipt).WithTxHash(hash).Build())
	k2 := cacheKey(store.NewFilterBuilder(store.KindReceipt).WithTxHash(hash).Build())
	k3 := cacheKey(store.NewFilterBuilder(store.KindTransaction).WithTxHash(hash).Build())

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Regexp(t, "^evm:rcpt:[0-9a-f]{16}$", k1)
}

// With redis unreachable, all lookups fall through to the underlying store.
func TestCachedStoreFallThrough(t *testing.T) {
	cb := test.NewChainBuilder(100)
	cb.AddBlock(gethTypes.LegacyTxType, gethTypes.DynamicFeeTxType)

	ms := memdb.NewMemoryStore()
	require.NoError(t, ms.Pushn(context.Background(), cb.BlockDatas()...))

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cs := NewCachedStore(ms, rdb, time.Minute)
	defer cs.Close()

	ctx := context.Background()
	tx := cb.Blocks[0].Data.Transactions[1]

	filter := store.NewFilterBuilder(store.KindReceipt).WithTxHash(tx.Hash).Build()
	rcpt, err := store.GetOne[store.StoredReceipt](ctx, cs, filter)
	require.NoError(t, err)
	require.NotNil(t, rcpt)
	assert.Equal(t, tx.Hash, rcpt.TransactionHash)

	filter = store.NewFilterBuilder(store.KindReceipt).WithTxHash(common.HexToHash("0x1f")).Build()
	rcpt, err = store.GetOne[store.StoredReceipt](ctx, cs, filter)
	require.NoError(t, err)
	assert.Nil(t, rcpt)

	filter = store.NewFilterBuilder(store.KindTransaction).WithBlockNumber(100).Build()
	txs, err := store.Get[store.StoredTransaction](ctx, cs, filter)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	ok, err := cs.BlockExists(ctx, store.BlockRefFromNumber(100))
	require.NoError(t, err)
	assert.True(t, ok)
}

func assertJSONEqual(t *testing.T, expected, actual any) {
	expectedJSON, err := json.Marshal(expected)
	require.NoError(t, err)

	actualJSON, err := json.Marshal(actual)
	require.NoError(t, err)

	assert.JSONEq(t, string(expectedJSON), string(actualJSON))
}

// Cached records are compared as served, since RLP decodes absent fee fields as zero.
func mustConvertTx(t *testing.T, stx *store.StoredTransaction, header *store.StoredHeader) *types.Transaction {
	tx, err := ethbridge.ConvertTransaction(stx, header.BaseFee)
	require.NoError(t, err)
	return tx
}

func mustConvertReceipt(t *testing.T, srcpt *store.StoredReceipt) *types.Receipt {
	rcpt, err := ethbridge.ConvertReceipt(srcpt)
	require.NoError(t, err)
	return rcpt
}

func mustConvertHeader(t *testing.T, sh *store.StoredHeader) *types.Header {
	header, err := ethbridge.ConvertHeader(sh)
	require.NoError(t, err)
	return header
}

func TestCachedStoreHit(t *testing.T) {
	cb := test.NewChainBuilder(100)
	cb.AddBlock(gethTypes.LegacyTxType, gethTypes.AccessListTxType, gethTypes.DynamicFeeTxType, gethTypes.BlobTxType)
	block := cb.Blocks[0].Data

	ms := memdb.NewMemoryStore()
	require.NoError(t, ms.Pushn(context.Background(), cb.BlockDatas()...))

	mr := miniredis.RunT(t)
	cs := NewCachedStore(ms, redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer cs.Close()

	// records are served from cache only, once cached
	cacheOnly := NewCachedStore(memdb.NewMemoryStore(), redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer cacheOnly.Close()

	ctx := context.Background()

	for i, stx := range block.Transactions {
		txFilter := store.NewFilterBuilder(store.KindTransaction).WithTxHash(stx.Hash).Build()
		rcptFilter := store.NewFilterBuilder(store.KindReceipt).WithTxHash(stx.Hash).Build()

		tx, err := store.GetOne[store.StoredTransaction](ctx, cacheOnly, txFilter)
		require.NoError(t, err)
		assert.Nil(t, tx, "tx #%v cached before lookup", i)

		tx, err = store.GetOne[store.StoredTransaction](ctx, cs, txFilter)
		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.True(t, mr.Exists(cacheKey(txFilter)))
		assert.Equal(t, time.Minute, mr.TTL(cacheKey(txFilter)))

		rcpt, err := store.GetOne[store.StoredReceipt](ctx, cs, rcptFilter)
		require.NoError(t, err)
		require.NotNil(t, rcpt)

		cachedTx, err := store.GetOne[store.StoredTransaction](ctx, cacheOnly, txFilter)
		require.NoError(t, err)
		require.NotNil(t, cachedTx, "tx #%v", i)
		assertJSONEqual(t, mustConvertTx(t, block.Transactions[i], block.Header), mustConvertTx(t, cachedTx, block.Header))

		cachedRcpt, err := store.GetOne[store.StoredReceipt](ctx, cacheOnly, rcptFilter)
		require.NoError(t, err)
		require.NotNil(t, cachedRcpt, "receipt #%v", i)
		assertJSONEqual(t, mustConvertReceipt(t, block.Receipts[i]), mustConvertReceipt(t, cachedRcpt))
	}

	headerFilter := store.NewFilterBuilder(store.KindHeader).WithBlockHash(block.Header.Hash).Build()

	header, err := store.GetOne[store.StoredHeader](ctx, cs, headerFilter)
	require.NoError(t, err)
	require.NotNil(t, header)

	cachedHeader, err := store.GetOne[store.StoredHeader](ctx, cacheOnly, headerFilter)
	require.NoError(t, err)
	require.NotNil(t, cachedHeader)
	assertJSONEqual(t, mustConvertHeader(t, block.Header), mustConvertHeader(t, cachedHeader))
	assert.Equal(t, block.Header.Hash, cachedHeader.Hash)

	// lookups by block number bypass cache
	txs, err := store.Get[store.StoredTransaction](ctx, cacheOnly, store.NewFilterBuilder(store.KindTransaction).WithBlockNumber(100).Build())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCachedStoreCorruptedEntry(t *testing.T) {
	cb := test.NewChainBuilder(100)
	cb.AddBlock(gethTypes.DynamicFeeTxType)
	stx := cb.Blocks[0].Data.Transactions[0]

	ms := memdb.NewMemoryStore()
	require.NoError(t, ms.Pushn(context.Background(), cb.BlockDatas()...))

	mr := miniredis.RunT(t)
	cs := NewCachedStore(ms, redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer cs.Close()

	filter := store.NewFilterBuilder(store.KindTransaction).WithTxHash(stx.Hash).Build()
	require.NoError(t, mr.Set(cacheKey(filter), "corrupted"))

	tx, err := store.GetOne[store.StoredTransaction](context.Background(), cs, filter)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, stx.Hash, tx.Hash)

	cached, err := mr.Get(cacheKey(filter))
	require.NoError(t, err)
	assert.NotEqual(t, "corrupted", cached)
}
