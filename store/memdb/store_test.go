package memdb

import (
	"context"
	"testing"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/test"
	"github.com/Conflux-Chain/confura-evm/types"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*MemoryStore, *test.ChainBuilder) {
	cb := test.NewChainBuilder(100)
	cb.AddBlock(gethTypes.LegacyTxType, gethTypes.DynamicFeeTxType, gethTypes.AccessListTxType)
	cb.AddBlock()
	cb.AddBlock(gethTypes.BlobTxType, gethTypes.DynamicFeeTxType)

	ms := NewMemoryStore()
	require.NoError(t, ms.Pushn(context.Background(), cb.BlockDatas()...))

	return ms, cb
}

func TestMemoryStoreFindOne(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	tx := cb.Blocks[0].Data.Transactions[1]

	filter := store.NewFilterBuilder(store.KindTransaction).WithTxHash(tx.Hash).Build()
	stx, err := store.GetOne[store.StoredTransaction](ctx, ms, filter)
	require.NoError(t, err)
	require.NotNil(t, stx)
	assert.Equal(t, tx, stx)

	// narrowed by a non matching block number
	filter = store.NewFilterBuilder(store.KindReceipt).WithTxHash(tx.Hash).WithBlockNumber(101).Build()
	rcpt, err := store.GetOne[store.StoredReceipt](ctx, ms, filter)
	require.NoError(t, err)
	assert.Nil(t, rcpt)

	filter = store.NewFilterBuilder(store.KindTransaction).WithBlockNumber(102).WithTxIndex(1).Build()
	stx, err = store.GetOne[store.StoredTransaction](ctx, ms, filter)
	require.NoError(t, err)
	require.NotNil(t, stx)
	assert.Equal(t, cb.Blocks[2].Data.Transactions[1].Hash, stx.Hash)

	filter = store.NewFilterBuilder(store.KindHeader).WithBlockHash(cb.Blocks[1].Data.Hash()).Build()
	header, err := store.GetOne[store.StoredHeader](ctx, ms, filter)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, uint64(101), header.Number)
}

func TestMemoryStoreFindOrdered(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	filter := store.NewFilterBuilder(store.KindReceipt).WithBlockNumber(100).Build()
	rcpts, err := store.Get[store.StoredReceipt](ctx, ms, filter)
	require.NoError(t, err)
	require.Len(t, rcpts, 3)

	for i, rcpt := range rcpts {
		assert.Equal(t, uint64(i), rcpt.TransactionIndex)
		assert.Equal(t, cb.Blocks[0].Data.Receipts[i], rcpt)
	}

	filter = store.NewFilterBuilder(store.KindHeader).
		WithBlockNumberRange(types.RangeUint64{From: 90, To: 1000}).
		Build()
	headers, err := store.Get[store.StoredHeader](ctx, ms, filter)
	require.NoError(t, err)
	require.Len(t, headers, 3)
	assert.Equal(t, uint64(100), headers[0].Number)
	assert.Equal(t, uint64(102), headers[2].Number)
}

func TestMemoryStoreEmptyVsAbsent(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	filter := store.NewFilterBuilder(store.KindTransaction).WithBlockHash(cb.Blocks[1].Data.Hash()).Build()
	txs, err := store.Get[store.StoredTransaction](ctx, ms, filter)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	filter = store.NewFilterBuilder(store.KindTransaction).WithBlockNumber(500).Build()
	txs, err = store.Get[store.StoredTransaction](ctx, ms, filter)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	filter := store.NewFilterBuilder(store.KindHeader).WithBlockNumber(100).Build()
	header, err := store.GetOne[store.StoredHeader](ctx, ms, filter)
	require.NoError(t, err)

	header.GasUsed = 0
	assert.NotZero(t, cb.Blocks[0].Data.Header.GasUsed)
}

func TestMemoryStoreBlockIndex(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	for _, ref := range []store.BlockRef{
		store.BlockRefFromNumber(100),
		store.BlockRefFromNumber(102),
		store.BlockRefFromHash(cb.Blocks[1].Data.Hash()),
	} {
		ok, err := ms.BlockExists(ctx, ref)
		require.NoError(t, err)
		assert.True(t, ok, ref.String())
	}

	for _, ref := range []store.BlockRef{
		store.BlockRefFromNumber(99),
		store.BlockRefFromNumber(103),
		store.BlockRefFromHash(cb.Blocks[0].Data.Header.ParentHash),
	} {
		ok, err := ms.BlockExists(ctx, ref)
		require.NoError(t, err)
		assert.False(t, ok, ref.String())
	}

	earliest, err := ms.ResolveTag(ctx, types.BlockTagEarliest)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), earliest)

	for _, tag := range []types.BlockTag{
		types.BlockTagLatest, types.BlockTagPending, types.BlockTagSafe, types.BlockTagFinalized,
	} {
		bn, err := ms.ResolveTag(ctx, tag)
		require.NoError(t, err)
		assert.Equal(t, uint64(102), bn, tag.String())
	}
}

func TestMemoryStoreEmpty(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	_, err := ms.ResolveTag(ctx, types.BlockTagLatest)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ok, err := ms.BlockExists(ctx, store.BlockRefFromNumber(0))
	require.NoError(t, err)
	assert.False(t, ok)

	filter := store.NewFilterBuilder(store.KindHeader).
		WithBlockNumberRange(types.RangeUint64{From: 0, To: 10}).
		Build()
	headers, err := store.Get[store.StoredHeader](ctx, ms, filter)
	require.NoError(t, err)
	assert.Empty(t, headers)
}

func TestMemoryStorePushContinuity(t *testing.T) {
	ms, _ := newTestStore(t)

	other := test.NewChainBuilder(103)
	other.AddBlock(gethTypes.LegacyTxType)

	err := ms.Pushn(context.Background(), other.BlockDatas()...)
	assert.ErrorIs(t, err, store.ErrContinousBlockRequired)

	broken := test.NewChainBuilder(0)
	block := broken.AddBlock(gethTypes.LegacyTxType, gethTypes.LegacyTxType)
	block.Data.Receipts[0], block.Data.Receipts[1] = block.Data.Receipts[1], block.Data.Receipts[0]

	err = NewMemoryStore().Pushn(context.Background(), block.Data)
	assert.ErrorIs(t, err, store.ErrInconsistentBlockRecord)
}

func TestMemoryStoreInvalidQuery(t *testing.T) {
	ms, cb := newTestStore(t)
	ctx := context.Background()

	var header store.StoredHeader
	filter := store.NewFilterBuilder(store.KindReceipt).WithBlockNumber(100).Build()
	_, err := ms.FindOne(ctx, filter, &header)
	assert.ErrorIs(t, err, store.ErrUnexpectedDestType)

	filter = store.NewFilterBuilder(store.KindHeader).WithTxHash(cb.Blocks[0].Txs[0].Hash()).Build()
	_, err = ms.FindOne(ctx, filter, &header)
	assert.ErrorIs(t, err, store.ErrInvalidFilter)
}
