package mysql

import (
	"context"
	"time"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsAdapterName = "mysql"

var (
	_ store.Database = (*MysqlStore)(nil) // ensure MysqlStore implements Database interface
	_ store.Writable = (*MysqlStore)(nil)
)

// MysqlStore serves indexed chain data from mysql, where headers, transactions along with
// receipts and withdrawals are saved as RLP blobs in separate tables.
type MysqlStore struct {
	*baseStore
	*blockStore

	txs *txStore
	wds *withdrawalStore

	config *Config
}

// NewMysqlStore creates a store over the db, whose tables must have been created.
func NewMysqlStore(db *gorm.DB, config *Config) (*MysqlStore, error) {
	if config == nil {
		config = &Config{}
	}

	for _, model := range allModels {
		if !db.Migrator().HasTable(model) {
			return nil, errors.Errorf("table of %T not created", model)
		}
	}

	return &MysqlStore{
		baseStore:  newBaseStore(db),
		blockStore: newBlockStore(db, config.ExistenceCacheSize),
		txs:        newTxStore(db),
		wds:        newWithdrawalStore(db),
		config:     config,
	}, nil
}

func (ms *MysqlStore) FindOne(ctx context.Context, filter store.Filter, dest any) (found bool, err error) {
	defer func(start time.Time) {
		metrics.TrackStoreOp(metricsAdapterName, "findOne", start, err)
	}(time.Now())

	return ms.load(ctx, filter, dest, false)
}

func (ms *MysqlStore) Find(ctx context.Context, filter store.Filter, dest any) (err error) {
	defer func(start time.Time) {
		metrics.TrackStoreOp(metricsAdapterName, "find", start, err)
	}(time.Now())

	_, err = ms.load(ctx, filter, dest, true)
	return err
}

func (ms *MysqlStore) load(ctx context.Context, filter store.Filter, dest any, many bool) (bool, error) {
	if err := filter.Validate(); err != nil {
		return false, err
	}

	if err := store.CheckDestType(filter.Kind(), dest, many); err != nil {
		return false, err
	}

	switch filter.Kind() {
	case store.KindHeader:
		return ms.loadHeaders(ctx, filter, dest, many)
	case store.KindTransaction:
		return ms.txs.loadTransactions(ctx, filter, dest, many)
	case store.KindReceipt:
		return ms.txs.loadReceipts(ctx, filter, dest, many)
	case store.KindWithdrawal:
		return ms.wds.loadWithdrawals(ctx, filter, dest, many)
	}

	return false, store.ErrUnsupported
}

// Pushn saves continuous blocks into db store in a single db transaction.
func (ms *MysqlStore) Pushn(ctx context.Context, blocks ...*store.BlockData) (err error) {
	if len(blocks) == 0 {
		return nil
	}

	defer func(start time.Time) {
		metrics.TrackStoreOp(metricsAdapterName, "pushn", start, err)
	}(time.Now())

	if err := ms.requireContinuous(ctx, blocks); err != nil {
		return err
	}

	err = ms.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		if err := ms.blockStore.Add(dbTx, blocks); err != nil {
			return errors.WithMessage(err, "failed to save blocks")
		}

		if err := ms.txs.Add(dbTx, blocks); err != nil {
			return errors.WithMessage(err, "failed to save transactions")
		}

		if err := ms.wds.Add(dbTx, blocks); err != nil {
			return errors.WithMessage(err, "failed to save withdrawals")
		}

		return nil
	})

	if err == nil {
		logrus.WithFields(logrus.Fields{
			"fromBlock": blocks[0].Number(),
			"toBlock":   blocks[len(blocks)-1].Number(),
		}).Debug("Blocks saved into mysql store")
	}

	return err
}

func (ms *MysqlStore) requireContinuous(ctx context.Context, blocks []*store.BlockData) error {
	lastHeader, err := ms.lastHeader(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to get last block header")
	}

	var last *store.BlockData
	if lastHeader != nil {
		last = &store.BlockData{Header: lastHeader}
	}

	for _, data := range blocks {
		if err := data.Validate(); err != nil {
			return err
		}

		if last != nil {
			if ok, desc := data.IsContinuousTo(last); !ok {
				return errors.WithMessage(store.ErrContinousBlockRequired, desc)
			}
		}

		last = data
	}

	return nil
}
