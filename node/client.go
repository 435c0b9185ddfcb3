package node

import (
	"context"
	"time"

	"github.com/Conflux-Chain/confura-evm/util/metrics"
	providers "github.com/openweb3/go-rpc-provider/provider_wrapper"
	"github.com/openweb3/go-rpc-provider/utils"
	"github.com/openweb3/web3go"
	"github.com/sirupsen/logrus"
)

// MustNewEthClient creates a full node client with metrics and logging hooked, or
// exits on error.
func MustNewEthClient(cfg *Config) *web3go.Client {
	eth, err := NewEthClient(cfg)
	if err != nil {
		logrus.WithField("url", cfg.URL).WithError(err).Fatal("Failed to create ETH client")
	}

	return eth
}

func NewEthClient(cfg *Config) (*web3go.Client, error) {
	eth, err := web3go.NewClientWithOption(cfg.URL, web3go.ClientOption{
		Option: providers.Option{
			RetryCount:     cfg.Retry,
			RetryInterval:  cfg.RetryInterval,
			RequestTimeout: cfg.RequestTimeout,
		},
	})
	if err != nil {
		return nil, err
	}

	mp := providers.NewMiddlewarableProvider(eth.Provider())
	mp.HookCallContext(middlewareMetrics)
	mp.HookCallContext(middlewareLog(cfg.URL))
	eth.SetProvider(mp)

	return eth, nil
}

func middlewareMetrics(handler providers.CallContextFunc) providers.CallContextFunc {
	return func(ctx context.Context, result interface{}, method string, args ...interface{}) error {
		start := time.Now()

		err := handler(ctx, result, method, args...)

		metrics.Registry.Node.Duration(method, err).UpdateSince(start)
		if err != nil && !utils.IsRPCJSONError(err) {
			metrics.Registry.Node.NonRpcErrors().Inc(1)
		}

		return err
	}
}

func middlewareLog(fullnode string) providers.CallContextMiddleware {
	return func(handler providers.CallContextFunc) providers.CallContextFunc {
		return func(ctx context.Context, result interface{}, method string, args ...interface{}) error {
			if !logrus.IsLevelEnabled(logrus.DebugLevel) {
				return handler(ctx, result, method, args...)
			}

			logger := logrus.WithFields(logrus.Fields{
				"fullnode": fullnode,
				"method":   method,
				"args":     args,
			})

			start := time.Now()
			err := handler(ctx, result, method, args...)
			logger = logger.WithField("elapsed", time.Since(start))

			if err != nil {
				logger = logger.WithError(err)
			} else if logrus.IsLevelEnabled(logrus.TraceLevel) {
				logger = logger.WithField("result", result)
			}

			logger.Debug("Full node RPC done")

			return err
		}
	}
}
