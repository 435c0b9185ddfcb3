package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util"
	"github.com/Conflux-Chain/confura-evm/util/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const adapterName = "redis"

var _ store.Database = (*CachedStore)(nil)

// CachedStore is a read through cache over an indexed store.
//
// Only single record lookups by transaction hash or block hash are cached, since indexed
// records are immutable once the transaction or block is included. Any redis failure
// falls back to the underlying store.
type CachedStore struct {
	store.Database

	rdb *redis.Client
	ttl time.Duration
}

func NewCachedStore(db store.Database, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Database: db, rdb: rdb, ttl: ttl}
}

// FindOne implements store.Readable.
func (cs *CachedStore) FindOne(ctx context.Context, filter store.Filter, dest any) (bool, error) {
	if !isCacheable(filter) {
		return cs.Database.FindOne(ctx, filter, dest)
	}

	key := cacheKey(filter)

	data, err := cs.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := util.UnmarshalRLP(data, dest); err == nil {
			metrics.Registry.Store.CacheHit(adapterName, filter.Kind().String(), true)
			return true, nil
		}

		logrus.WithField("key", key).WithError(err).Warn("Failed to decode cached record")
	case err != redis.Nil:
		logrus.WithField("key", key).WithError(err).Warn("Failed to read cached record")
	}

	metrics.Registry.Store.CacheHit(adapterName, filter.Kind().String(), false)

	found, err := cs.Database.FindOne(ctx, filter, dest)
	if err != nil || !found {
		return found, err
	}

	cs.put(ctx, key, dest)

	return true, nil
}

func (cs *CachedStore) put(ctx context.Context, key string, record any) {
	data, err := util.MarshalRLP(record)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Failed to encode record for cache")
		return
	}

	if err := cs.rdb.Set(ctx, key, data, cs.ttl).Err(); err != nil {
		logrus.WithField("key", key).WithError(err).Debug("Failed to cache record")
	}
}

// Close closes both the redis client and the underlying store.
func (cs *CachedStore) Close() error {
	return multierr.Combine(cs.rdb.Close(), cs.Database.Close())
}

// isCacheable checks if the filter addresses an immutable record by hash alone, e.g.
// a receipt by transaction hash, or a header by block hash.
func isCacheable(filter store.Filter) bool {
	if _, ok := filter.BlockNumber(); ok {
		return false
	}

	if _, ok := filter.BlockRange(); ok {
		return false
	}

	if _, ok := filter.TxIndex(); ok {
		return false
	}

	switch filter.Primary() {
	case store.SelectorTxHash:
		_, narrowed := filter.BlockHash()
		return !narrowed
	case store.SelectorBlockHash:
		return filter.Kind() == store.KindHeader
	}

	return false
}

// Cached records are keyed as `evm:{kind}:{filter fingerprint}`, with RLP encoded
// record as value.
func cacheKey(filter store.Filter) string {
	return util.RedisKey("evm", filter.Kind(), fmt.Sprintf("%016x", filter.Fingerprint()))
}
