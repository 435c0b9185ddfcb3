package handlers

import (
	"net/http"
)

// Middleware decorates the HTTP handler of RPC server, e.g. to inject values into
// request context for RPC middlewares.
type Middleware func(next http.Handler) http.Handler

type CtxKey string

const (
	CtxKeyRealIP       = CtxKey("EvmRpc-Real-IP")
	CtxKeyRateRegistry = CtxKey("EvmRpc-Rate-Limit-Registry")
)
