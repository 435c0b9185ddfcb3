package middlewares

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/Conflux-Chain/confura-evm/util/rpc/handlers"
	"github.com/openweb3/go-rpc-provider"
	"github.com/sirupsen/logrus"
)

var errRpcCrashed = errors.New("internal error while handling RPC request")

// Recover turns a panic of any inner middleware or RPC handler into an error response.
func Recover(next rpc.HandleCallMsgFunc) rpc.HandleCallMsgFunc {
	return func(ctx context.Context, msg *rpc.JsonRpcMessage) (resp *rpc.JsonRpcMessage) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}

			ipAddr, _ := handlers.GetIPAddressFromContext(ctx)

			logrus.WithFields(logrus.Fields{
				"ipAddress": ipAddr,
				"id":        string(msg.ID),
				"method":    msg.Method,
				"params":    string(msg.Params),
				"panicErr":  err,
				"stack":     string(debug.Stack()),
			}).Error("RPC panic recovered")

			resp = msg.ErrorResponse(errRpcCrashed)
		}()

		return next(ctx, msg)
	}
}
