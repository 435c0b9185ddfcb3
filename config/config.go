package config

import (
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util/metrics"
	"github.com/Conflux-Chain/confura-evm/util/pprof"
	"github.com/Conflux-Chain/go-conflux-util/config"
)

// Read system environment variables prefixed with "EVMRPC".
// eg., `EVMRPC_LOG_LEVEL` will override "log.level" config item from the config file.
const viperEnvPrefix = "evmrpc"

func Init() {
	// init utilities eg., viper and logging
	config.MustInit(viperEnvPrefix)

	// init metrics before any metric created
	metrics.MustInit()

	// init pprof
	pprof.MustInit()

	// init store
	store.MustInit()
}
