package cmd

import (
	"context"
	"sync"

	cmdutil "github.com/Conflux-Chain/confura-evm/cmd/util"
	"github.com/Conflux-Chain/confura-evm/config"
	"github.com/Conflux-Chain/confura-evm/node"
	"github.com/Conflux-Chain/confura-evm/rpc"
	"github.com/Conflux-Chain/confura-evm/rpc/handler"
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util/rate"
	rpcutil "github.com/Conflux-Chain/confura-evm/util/rpc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Start RPC server to serve indexed chain data",
	Run:   startRpcService,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
}

func startRpcService(*cobra.Command, []string) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	storeCtx := cmdutil.MustInitStoreContext()
	defer storeCtx.Close()

	startEvmRpcServer(ctx, &wg, storeCtx)

	cmdutil.GracefulShutdown(&wg, cancel)
}

func startEvmRpcServer(ctx context.Context, wg *sync.WaitGroup, storeCtx cmdutil.StoreContext) {
	option := handler.EthStoreOption{Disabler: store.StoreConfig()}

	// resolves chain head tags against full node if configured
	if resolver, ok := node.MustNewEthTagResolverFromViper(storeCtx.DB); ok {
		option.TagResolver = resolver
	}

	provider := handler.NewEthStoreHandler(storeCtx.DB, option)
	registry := rate.MustNewRegistryFromViper(ctx)

	cfg := rpc.MustNewConfigFromViper()
	server := rpc.MustNewEvmRpcServer(provider, cfg, config.ClientVersion(), registry)

	logrus.WithField("config", cfg).Info("Start to run EVM RPC server")

	go server.MustServeGraceful(ctx, wg, cfg.Endpoint, rpcutil.ProtocolHttp)

	if len(cfg.WsEndpoint) > 0 {
		go server.MustServeGraceful(ctx, wg, cfg.WsEndpoint, rpcutil.ProtocolWS)
	}
}
