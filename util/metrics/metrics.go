package metrics

import (
	"time"

	"github.com/Conflux-Chain/confura-evm/util"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/openweb3/go-rpc-provider/utils"
)

var Registry Metrics

type Metrics struct {
	RPC   RpcMetrics
	Store StoreMetrics
	Node  NodeMetrics
}

// RPC metrics
type RpcMetrics struct{}

func (*RpcMetrics) BatchSize() metrics.Histogram {
	return GetOrRegisterHistogram("evmrpc/rpc/batch/size")
}

func (*RpcMetrics) BatchLatency() metrics.Histogram {
	return GetOrRegisterHistogram("evmrpc/rpc/batch/latency")
}

// RateLimitVisitors returns the gauge of visitors tracked by the rate limiter of resource.
func (*RpcMetrics) RateLimitVisitors(resource string) metrics.Gauge {
	return GetOrRegisterGauge("evmrpc/rpc/rateLimit/visitors/%v", resource)
}

// UpdateDuration updates the rpc duration and the success or failure counter of method.
func (*RpcMetrics) UpdateDuration(method string, err error, start time.Time) {
	var isNilErr, isRpcErr bool
	if isNilErr = util.IsInterfaceValNil(err); !isNilErr {
		isRpcErr = utils.IsRPCJSONError(err)
	}

	switch {
	case isNilErr:
		GetOrRegisterCounter("evmrpc/rpc/success/%v", method).Inc(1)
	case isRpcErr:
		GetOrRegisterCounter("evmrpc/rpc/rpcErr/%v", method).Inc(1)
	default:
		GetOrRegisterCounter("evmrpc/rpc/nonRpcErr/%v", method).Inc(1)
	}

	// Only update latency if success or rpc error, since io error usually takes long time
	// and impacts the average latency.
	if isNilErr || isRpcErr {
		GetOrRegisterTimer("evmrpc/rpc/duration/all").UpdateSince(start)
		GetOrRegisterTimer("evmrpc/rpc/duration/%v", method).UpdateSince(start)
	}
}

// Store metrics
type StoreMetrics struct{}

// Duration returns the timer of a store operation, e.g. `Duration("mysql", "findOne")`.
func (*StoreMetrics) Duration(adapter, op string) metrics.Timer {
	return GetOrRegisterTimer("evmrpc/store/%v/duration/%v", adapter, op)
}

// Failure returns the failure counter of a store operation.
func (*StoreMetrics) Failure(adapter, op string) metrics.Counter {
	return GetOrRegisterCounter("evmrpc/store/%v/failure/%v", adapter, op)
}

// CacheHit marks a cache lookup of the record kind as hit or miss.
func (*StoreMetrics) CacheHit(adapter, kind string, hit bool) {
	if hit {
		GetOrRegisterCounter("evmrpc/store/%v/hit/%v", adapter, kind).Inc(1)
	} else {
		GetOrRegisterCounter("evmrpc/store/%v/miss/%v", adapter, kind).Inc(1)
	}
}

// HitRatio returns the cache hit ratio of the record kind since start, or 0 if never
// looked up.
func (*StoreMetrics) HitRatio(adapter, kind string) float64 {
	hits := GetOrRegisterCounter("evmrpc/store/%v/hit/%v", adapter, kind).Snapshot().Count()
	misses := GetOrRegisterCounter("evmrpc/store/%v/miss/%v", adapter, kind).Snapshot().Count()

	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}

	return 0
}

// TrackStoreOp updates the duration of a store operation and counts failures.
func TrackStoreOp(adapter, op string, start time.Time, err error) {
	Registry.Store.Duration(adapter, op).UpdateSince(start)

	if err != nil {
		Registry.Store.Failure(adapter, op).Inc(1)
	}
}

// Node metrics
type NodeMetrics struct{}

// Duration returns the timer of a full node rpc call by result, e.g. `success` or `failure`.
func (*NodeMetrics) Duration(method string, err error) metrics.Timer {
	if err != nil {
		return GetOrRegisterTimer("evmrpc/node/%v/failure", method)
	}

	return GetOrRegisterTimer("evmrpc/node/%v/success", method)
}

// NonRpcErrors counts the full node rpc calls failed for io errors.
func (*NodeMetrics) NonRpcErrors() metrics.Counter {
	return GetOrRegisterCounter("evmrpc/node/nonRpcErr")
}
