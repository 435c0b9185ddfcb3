package middlewares

import (
	"context"
	"errors"
	"regexp"

	"github.com/openweb3/go-rpc-provider"
)

const maxRpcMethodLen = 64

var (
	// namespace and method name joined by underscore, e.g. `eth_getBlockByNumber`
	rpcMethodValidationRegex = regexp.MustCompile("^[[:alnum:]]+_[[:alnum:]]+$")

	errInvalidRpcMethod = errors.New("invalid JSON-RPC method")
)

// AntiInjection rejects malformed method names before they are logged or counted in metrics.
func AntiInjection(next rpc.HandleCallMsgFunc) rpc.HandleCallMsgFunc {
	return func(ctx context.Context, msg *rpc.JsonRpcMessage) *rpc.JsonRpcMessage {
		if len(msg.Method) > maxRpcMethodLen || !rpcMethodValidationRegex.MatchString(msg.Method) {
			return msg.ErrorResponse(errInvalidRpcMethod)
		}

		return next(ctx, msg)
	}
}
