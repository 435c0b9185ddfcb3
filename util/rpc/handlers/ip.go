package handlers

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// forwarding headers set by reverse proxies, in order of precedence
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-Ip"}

// GetIPAddress returns the remote IP address of request. The rightmost public address in
// forwarding headers is preferred, which is the one right before the trusted proxies.
func GetIPAddress(r *http.Request) string {
	for _, h := range forwardedHeaders {
		addresses := strings.Split(r.Header.Get(h), ",")

		for i := len(addresses) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(addresses[i]))
			if err != nil || !isPublicAddr(addr) {
				continue
			}

			return addr.String()
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()

	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}

	// carrier grade NAT
	return !netip.MustParsePrefix("100.64.0.0/10").Contains(addr)
}

func GetIPAddressFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(CtxKeyRealIP).(string)
	return val, ok
}
