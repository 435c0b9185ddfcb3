package mysql

import (
	"errors"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util"
	"gorm.io/gorm"
)

type baseStore struct {
	db *gorm.DB
}

func newBaseStore(db *gorm.DB) *baseStore {
	return &baseStore{db}
}

func (baseStore) IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, store.ErrNotFound)
}

func (bs *baseStore) Close() error {
	if mysqlDb, err := bs.db.DB(); err != nil {
		return err
	} else {
		return mysqlDb.Close()
	}
}

func (bs *baseStore) exists(db *gorm.DB, modelPtr any, whereQuery string, args ...any) (bool, error) {
	err := db.Where(whereQuery, args...).Select("id").Take(modelPtr).Error
	if err == nil {
		return true, nil
	}

	if bs.IsRecordNotFound(err) {
		return false, nil
	}

	return false, err
}

// filterColumns names the columns that filter fields are matched against.
type filterColumns struct {
	hashId, hash           string // of the tx itself, empty if not applicable
	blockHashId, blockHash string
	index                  string // in-block position, empty if not applicable
}

var (
	blockColumns = filterColumns{
		blockHashId: "hash_id", blockHash: "hash",
	}
	txColumns = filterColumns{
		hashId: "hash_id", hash: "hash", blockHashId: "block_hash_id", blockHash: "block_hash", index: "tx_index",
	}
	withdrawalColumns = filterColumns{
		blockHashId: "block_hash_id", blockHash: "block_hash",
	}
)

// applyFilter narrows down the query by all fields set in the filter.
func applyFilter(db *gorm.DB, filter store.Filter, cols filterColumns) *gorm.DB {
	if txHash, ok := filter.TxHash(); ok && len(cols.hash) > 0 {
		db = db.Where(cols.hashId+" = ? AND "+cols.hash+" = ?", util.GetShortIdOfHash(txHash), txHash.Hex())
	}

	if blockHash, ok := filter.BlockHash(); ok {
		db = db.Where(
			cols.blockHashId+" = ? AND "+cols.blockHash+" = ?", util.GetShortIdOfHash(blockHash), blockHash.Hex(),
		)
	}

	if bn, ok := filter.BlockNumber(); ok {
		db = db.Where("block_number = ?", bn)
	}

	if br, ok := filter.BlockRange(); ok {
		db = db.Where("block_number BETWEEN ? AND ?", br.From, br.To)
	}

	if txIndex, ok := filter.TxIndex(); ok && len(cols.index) > 0 {
		db = db.Where(cols.index+" = ?", txIndex)
	}

	return db
}

// loadInto loads rows of model M by the query and decodes them into the destination,
// which is checked against the record kind already.
func loadInto[M, T any](db *gorm.DB, dest any, many bool, decode func(*M) (*T, error)) (bool, error) {
	if !many {
		db = db.Limit(1)
	}

	var rows []*M
	if err := db.Find(&rows).Error; err != nil {
		return false, err
	}

	for _, row := range rows {
		v, err := decode(row)
		if err != nil {
			return false, err
		}

		if many {
			store.AppendDest(dest, v)
		} else {
			store.SetDest(dest, v)
		}
	}

	return len(rows) > 0, nil
}
