package mysql

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type withdrawalStore struct {
	*baseStore
}

func newWithdrawalStore(db *gorm.DB) *withdrawalStore {
	return &withdrawalStore{baseStore: newBaseStore(db)}
}

func (ws *withdrawalStore) loadWithdrawals(ctx context.Context, filter store.Filter, dest any, many bool) (bool, error) {
	db := applyFilter(ws.db.WithContext(ctx).Model(&withdrawal{}), filter, withdrawalColumns).
		Order("block_number ASC").
		Order("position ASC")

	return loadInto(db, dest, many, (*withdrawal).toWithdrawal)
}

// Add batch saves block withdrawals into db store.
func (ws *withdrawalStore) Add(dbTx *gorm.DB, blocks []*store.BlockData) error {
	var rows []*withdrawal

	for _, data := range blocks {
		for _, wd := range data.Withdrawals {
			row, err := newWithdrawal(wd)
			if err != nil {
				return errors.WithMessagef(err, "failed to encode withdrawal of block #%v", data.Number())
			}

			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	return dbTx.CreateInBatches(rows, defaultBatchSizeInsert).Error
}
