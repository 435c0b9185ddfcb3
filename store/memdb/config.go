package memdb

import (
	"context"
	"encoding/json"
	"os"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config is the in-memory store settings.
type Config struct {
	Enabled bool
	// JSON file of indexed blocks to load on startup
	Fixture string
}

func MustNewConfigFromViper() *Config {
	var cfg Config
	viper.MustUnmarshalKey("store.memdb", &cfg)

	return &cfg
}

// MustNewStoreFromViper creates an in-memory store loaded with the configured fixture.
// Returns false if the in-memory store is disabled.
func MustNewStoreFromViper() (*MemoryStore, bool) {
	cfg := MustNewConfigFromViper()
	if !cfg.Enabled {
		return nil, false
	}

	ms := NewMemoryStore()
	if len(cfg.Fixture) == 0 {
		return ms, true
	}

	blocks, err := LoadFixture(cfg.Fixture)
	if err != nil {
		logrus.WithError(err).WithField("fixture", cfg.Fixture).Fatal("Failed to load memory store fixture")
	}

	if err := ms.Pushn(context.Background(), blocks...); err != nil {
		logrus.WithError(err).Fatal("Failed to push fixture blocks into memory store")
	}

	logrus.WithField("blocks", len(blocks)).Info("Memory store loaded from fixture")

	return ms, true
}

// LoadFixture reads indexed blocks from a JSON file.
func LoadFixture(path string) ([]*store.BlockData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read fixture file")
	}

	var blocks []*store.BlockData
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, errors.WithMessage(err, "failed to unmarshal fixture")
	}

	return blocks, nil
}
