package mysql

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/Conflux-Chain/confura-evm/util"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type blockStore struct {
	*baseStore

	// block hashes known to exist, which never turns false since indexed data is append only
	existence *lru.Cache
}

func newBlockStore(db *gorm.DB, existenceCacheSize int) *blockStore {
	cache, _ := lru.New(max(existenceCacheSize, 1))

	return &blockStore{
		baseStore: newBaseStore(db),
		existence: cache,
	}
}

func (bs *blockStore) loadHeaders(ctx context.Context, filter store.Filter, dest any, many bool) (bool, error) {
	db := applyFilter(bs.db.WithContext(ctx).Model(&block{}), filter, blockColumns).
		Order("block_number ASC")

	return loadInto(db, dest, many, (*block).toHeader)
}

func (bs *blockStore) BlockExists(ctx context.Context, ref store.BlockRef) (bool, error) {
	db := bs.db.WithContext(ctx)

	switch {
	case ref.Hash != nil:
		if bs.existence.Contains(*ref.Hash) {
			return true, nil
		}

		ok, err := bs.exists(db, &block{}, "hash_id = ? AND hash = ?", util.GetShortIdOfHash(*ref.Hash), ref.Hash.Hex())
		if ok {
			bs.existence.Add(*ref.Hash, struct{}{})
		}

		return ok, err
	case ref.Number != nil:
		return bs.exists(db, &block{}, "block_number = ?", *ref.Number)
	}

	return false, errors.New("empty block reference")
}

// ResolveTag maps `earliest` to the lowest indexed block and any other tag to the
// highest indexed block, since no pending or finality info is indexed.
func (bs *blockStore) ResolveTag(ctx context.Context, tag types.BlockTag) (uint64, error) {
	if !tag.IsValid() {
		return 0, errors.Errorf("invalid block tag %v", tag)
	}

	var result struct {
		MinBlockNumber *uint64
		MaxBlockNumber *uint64
	}

	err := bs.db.WithContext(ctx).
		Model(&block{}).
		Select("MIN(block_number) AS min_block_number, MAX(block_number) AS max_block_number").
		Scan(&result).Error
	if err != nil {
		return 0, err
	}

	if result.MinBlockNumber == nil || result.MaxBlockNumber == nil {
		return 0, store.ErrNotFound
	}

	if tag == types.BlockTagEarliest {
		return *result.MinBlockNumber, nil
	}

	return *result.MaxBlockNumber, nil
}

// lastHeader returns the header of the highest indexed block, or nil if no block indexed.
func (bs *blockStore) lastHeader(ctx context.Context) (*store.StoredHeader, error) {
	var header store.StoredHeader

	db := bs.db.WithContext(ctx).Model(&block{}).Order("block_number DESC")
	found, err := loadInto(db, &header, false, (*block).toHeader)
	if err != nil || !found {
		return nil, err
	}

	return &header, nil
}

// Add batch saves block headers into db store.
func (bs *blockStore) Add(dbTx *gorm.DB, blocks []*store.BlockData) error {
	var rows []*block

	for _, data := range blocks {
		row, err := newBlock(data.Header)
		if err != nil {
			return errors.WithMessagef(err, "failed to encode header of block #%v", data.Number())
		}

		rows = append(rows, row)
	}

	return dbTx.CreateInBatches(rows, defaultBatchSizeInsert).Error
}
