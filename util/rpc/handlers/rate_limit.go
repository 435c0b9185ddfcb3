package handlers

import (
	"context"
	"net/http"

	"github.com/Conflux-Chain/confura-evm/util/rate"
)

// RateLimit injects the rate limit registry into request context for RPC middlewares.
func RateLimit(registry *rate.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), CtxKeyRateRegistry, registry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RealIP injects the remote IP address into request context.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), CtxKeyRealIP, GetIPAddress(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitAllow checks if n visits of the named resource are allowed for the remote IP
// address. It always allows if rate limit not enabled.
func RateLimitAllow(ctx context.Context, name string, n int) bool {
	registry, ok := ctx.Value(CtxKeyRateRegistry).(*rate.Registry)
	if !ok || registry == nil {
		return true
	}

	ip, ok := GetIPAddressFromContext(ctx)
	if !ok {
		return true
	}

	limiter, ok := registry.Get(name)
	if !ok {
		return true
	}

	return limiter.Allow(ip, n)
}
