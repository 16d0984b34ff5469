package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyIPHeaders are consulted in order, and only when the direct peer is a
// private or loopback address, i.e. our own load balancer.
var proxyIPHeaders = []string{"Fly-Client-IP", "CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// resolveClientIP is used for login audit logs; it must not be spoofable by
// a caller that reaches the server directly.
func resolveClientIP(r *http.Request) string {
	peer, ok := parseAddr(r.RemoteAddr)
	if !ok {
		return ""
	}
	if !peer.IsLoopback() && !peer.IsPrivate() {
		return peer.String()
	}

	for _, header := range proxyIPHeaders {
		first, _, _ := strings.Cut(r.Header.Get(header), ",")
		if addr, ok := parseAddr(first); ok {
			return addr.String()
		}
	}
	return peer.String()
}

func parseAddr(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
