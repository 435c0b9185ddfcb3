package rpc

import (
	"time"

	"github.com/Conflux-Chain/confura-evm/rpc/handler"
	"github.com/Conflux-Chain/confura-evm/util/rate"
	rpcutil "github.com/Conflux-Chain/confura-evm/util/rpc"
	"github.com/Conflux-Chain/confura-evm/util/rpc/handlers"
	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
)

const nameEvmRpcServer = "evm_rpc"

// Config is the RPC server settings.
type Config struct {
	Endpoint   string `default:":8545"`
	WsEndpoint string
	ChainId    uint64 `default:"1"`
	// modules exposed via RPC, all public modules if empty
	ExposedModules []string

	Cors           []string
	VHosts         []string
	WsPingInterval time.Duration `default:"10s"`
}

// NewConfig creates the default RPC server settings, which allow all CORS origins and
// virtual hosts.
func NewConfig() *Config {
	var cfg Config
	defaults.SetDefaults(&cfg)

	cfg.Cors = []string{"*"}
	cfg.VHosts = []string{"*"}

	return &cfg
}

func MustNewConfigFromViper() *Config {
	var cfg Config
	viper.MustUnmarshalKey("rpc", &cfg)

	if cfg.Cors == nil {
		cfg.Cors = []string{"*"}
	}

	if cfg.VHosts == nil {
		cfg.VHosts = []string{"*"}
	}

	return &cfg
}

// NewEvmRpcServer creates an RPC server to serve indexed chain data. Rate limit is
// disabled if no registry specified.
func NewEvmRpcServer(
	provider handler.EthProvider, config *Config, clientVersion string, registry *rate.Registry,
) (*rpcutil.Server, error) {
	exposedApis, err := filterExposedApis(evmApis(provider, config.ChainId, clientVersion), config.ExposedModules)
	if err != nil {
		return nil, err
	}

	srvConfig := rpcutil.ServerConfig{
		Cors:           config.Cors,
		VHosts:         config.VHosts,
		WsPingInterval: config.WsPingInterval,
	}

	middlewares := []handlers.Middleware{handlers.RealIP}
	if registry != nil {
		middlewares = append(middlewares, handlers.RateLimit(registry))
	}

	return rpcutil.NewServer(nameEvmRpcServer, &srvConfig, exposedApis, middlewares...)
}

// MustNewEvmRpcServer creates an RPC server to serve indexed chain data, or exits on error.
func MustNewEvmRpcServer(
	provider handler.EthProvider, config *Config, clientVersion string, registry *rate.Registry,
) *rpcutil.Server {
	server, err := NewEvmRpcServer(provider, config, clientVersion, registry)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create EVM RPC server")
	}

	return server
}
