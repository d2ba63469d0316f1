package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP rewrites RemoteAddr from X-Forwarded-For when the service runs
// behind trustedHops reverse proxies. Each proxy appends the peer it saw, so
// the client is the entry trustedHops positions from the right; anything to
// its left is caller-supplied. With no trusted hops the header is ignored.
func RealIP(trustedHops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if trustedHops <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClient(r.Header.Values("X-Forwarded-For"), trustedHops); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(values []string, hops int) string {
	var chain []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			chain = append(chain, strings.TrimSpace(part))
		}
	}
	if len(chain) < hops {
		return ""
	}
	ip := chain[len(chain)-hops]
	if net.ParseIP(ip) == nil {
		return ""
	}
	return ip
}
