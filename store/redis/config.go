package redis

import (
	"time"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util"
	"github.com/Conflux-Chain/go-conflux-util/viper"
)

// Config is the redis cache settings.
type Config struct {
	Enabled bool
	Url     string        `default:"redis://127.0.0.1:6379/0"`
	Ttl     time.Duration `default:"1h"`
}

func MustNewConfigFromViper() *Config {
	var cfg Config
	viper.MustUnmarshalKey("store.redis", &cfg)

	return &cfg
}

// MustNewCachedStoreFromViper wraps the database with a redis read through cache, or
// returns the database as it is if the cache is disabled.
func MustNewCachedStoreFromViper(db store.Database) store.Database {
	cfg := MustNewConfigFromViper()
	if !cfg.Enabled {
		return db
	}

	return NewCachedStore(db, util.MustNewRedisClient(cfg.Url), cfg.Ttl)
}
