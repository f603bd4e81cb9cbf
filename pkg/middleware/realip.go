package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"
)

// RealIP rewrites RemoteAddr from X-Forwarded-For, but only for requests
// whose direct peer is one of the trusted proxy CIDRs. The client is the
// rightmost forwarded address that is not itself a trusted proxy.
func RealIP(trusted []string, logger *zap.Logger) func(http.Handler) http.Handler {
	var prefixes []netip.Prefix
	for _, raw := range trusted {
		prefix, err := parseTrusted(raw)
		if err != nil {
			logger.Warn("Ignoring invalid trusted proxy", zap.String("value", raw), zap.Error(err))
			continue
		}
		prefixes = append(prefixes, prefix)
	}

	isTrusted := func(addr netip.Addr) bool {
		for _, p := range prefixes {
			if p.Contains(addr.Unmap()) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, err := netip.ParseAddr(clientIP(r))
			if err != nil || !isTrusted(peer) {
				next.ServeHTTP(w, r)
				return
			}

			hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
				if err != nil {
					break
				}
				if !isTrusted(hop) {
					r.RemoteAddr = net.JoinHostPort(hop.String(), "0")
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseTrusted(raw string) (netip.Prefix, error) {
	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		return prefix.Masked(), err
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()), nil
}
