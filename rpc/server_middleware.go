package rpc

import (
	"github.com/Conflux-Chain/confura-evm/util/rpc/middlewares"
	"github.com/openweb3/go-rpc-provider"
)

// go-rpc-provider only supports static middlewares for RPC server.
func init() {
	// middlewares executed in order

	// panic recovery
	rpc.HookHandleCallMsg(middlewares.Recover)

	// anti-injection
	rpc.HookHandleCallMsg(middlewares.AntiInjection)

	// rate limit
	rpc.HookHandleBatch(middlewares.RateLimitBatch)
	rpc.HookHandleCallMsg(middlewares.RateLimit)

	// metrics
	rpc.HookHandleBatch(middlewares.MetricsBatch)
	rpc.HookHandleCallMsg(middlewares.Metrics)

	// log
	rpc.HookHandleBatch(middlewares.LogBatch)
	rpc.HookHandleCallMsg(middlewares.Log)

	// invalid json rpc request without `ID`
	rpc.HookHandleCallMsg(rpc.PreventMessagesWithouID)
}
