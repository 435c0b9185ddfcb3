package mysql

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type txStore struct {
	*baseStore
}

func newTxStore(db *gorm.DB) *txStore {
	return &txStore{baseStore: newBaseStore(db)}
}

func (ts *txStore) query(ctx context.Context, filter store.Filter) *gorm.DB {
	return applyFilter(ts.db.WithContext(ctx).Model(&transaction{}), filter, txColumns).
		Order("block_number ASC").
		Order("tx_index ASC")
}

func (ts *txStore) loadTransactions(ctx context.Context, filter store.Filter, dest any, many bool) (bool, error) {
	db := ts.query(ctx, filter).Where("tx_raw_data_len > 0")
	return loadInto(db, dest, many, (*transaction).toTransaction)
}

func (ts *txStore) loadReceipts(ctx context.Context, filter store.Filter, dest any, many bool) (bool, error) {
	db := ts.query(ctx, filter).Where("receipt_raw_data_len > 0")
	return loadInto(db, dest, many, (*transaction).toReceipt)
}

// Add batch saves block transactions along with receipts into db store.
func (ts *txStore) Add(dbTx *gorm.DB, blocks []*store.BlockData) error {
	var rows []*transaction

	for _, data := range blocks {
		for i, tx := range data.Transactions {
			var receipt *store.StoredReceipt
			if len(data.Receipts) > 0 {
				receipt = data.Receipts[i]
			}

			row, err := newTx(tx, receipt)
			if err != nil {
				return errors.WithMessagef(err, "failed to encode tx %v", tx.Hash)
			}

			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	return dbTx.CreateInBatches(rows, defaultBatchSizeInsert).Error
}
