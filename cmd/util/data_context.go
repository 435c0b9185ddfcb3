package util

import (
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/store/memdb"
	"github.com/Conflux-Chain/confura-evm/store/mysql"
	"github.com/Conflux-Chain/confura-evm/store/redis"
	"github.com/sirupsen/logrus"
)

// StoreContext context to hold the store instance that chain data served from.
type StoreContext struct {
	DB store.Database
}

// MustInitStoreContext opens the configured store, preferring mysql over the in-memory
// one, and wraps it with redis cache if enabled.
func MustInitStoreContext() StoreContext {
	var db store.Database

	if config := mysql.MustNewConfigFromViper(); config.Enabled {
		db = config.MustOpenOrCreate()
	} else if ms, ok := memdb.MustNewStoreFromViper(); ok {
		db = ms
	} else {
		logrus.Fatal("No store enabled, either `store.mysql` or `store.memdb` required")
	}

	return StoreContext{DB: redis.MustNewCachedStoreFromViper(db)}
}

func (ctx *StoreContext) Close() {
	if ctx.DB == nil {
		return
	}

	if err := ctx.DB.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close store")
	}
}
