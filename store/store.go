package store

import (
	"strings"

	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var storeConf storeConfig

// StoreConfig returns the store data type settings loaded by MustInit.
func StoreConfig() *storeConfig {
	return &storeConf
}

// MustInit loads the store settings from viper.
func MustInit() {
	storeConf.mustInit("store")
}

// StoreDisabler tells which chain data types are not served from the store.
type StoreDisabler interface {
	IsChainBlockDisabled() bool
	IsChainTxnDisabled() bool
	IsChainReceiptDisabled() bool
}

type storeConfig struct {
	// disabled store chain data types, available options are:
	// `block`, `transaction` and `receipt`
	Disables []string

	disabledDataTypeMapping map[string]bool
}

// NewStoreDisabler creates a disabler from data type names, returning an error
// for any unknown name.
func NewStoreDisabler(disables ...string) (StoreDisabler, error) {
	conf := storeConfig{Disables: disables}
	if err := conf.init(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (conf *storeConfig) mustInit(viperRoot string) {
	viper.MustUnmarshalKey(viperRoot, conf)

	if err := conf.init(); err != nil {
		logrus.WithError(err).Fatal("Failed to init store config")
	}
}

func (conf *storeConfig) init() error {
	dataTypeMapping := make(map[string]bool, 3)
	for _, dt := range []string{"block", "transaction", "receipt"} {
		dataTypeMapping[dt] = false
	}

	for _, dt := range conf.Disables {
		ldt := strings.ToLower(dt)

		if _, ok := dataTypeMapping[ldt]; !ok {
			return errors.Errorf("invalid disabled store data type %v", dt)
		}

		dataTypeMapping[ldt] = true
	}

	conf.disabledDataTypeMapping = dataTypeMapping
	return nil
}

func (conf *storeConfig) IsChainBlockDisabled() bool {
	return conf.disabledDataTypeMapping["block"]
}

func (conf *storeConfig) IsChainTxnDisabled() bool {
	return conf.disabledDataTypeMapping["transaction"]
}

func (conf *storeConfig) IsChainReceiptDisabled() bool {
	return conf.disabledDataTypeMapping["receipt"]
}
