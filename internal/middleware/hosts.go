package middleware

import (
	"net"
	"net/http"
	"strings"
)

var debugHosts = []string{"localhost", "127.0.0.1", "[::1]", "::1"}

// AllowedHosts rejects requests whose Host header is not listed. "*" allows
// any host and an entry starting with "." also matches its subdomains.
func AllowedHosts(hosts []string, debug bool) func(http.Handler) http.Handler {
	if len(hosts) == 0 && debug {
		hosts = debugHosts
	}
	allowed := make([]string, len(hosts))
	for i, h := range hosts {
		allowed[i] = strings.ToLower(h)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hostAllowed(hostOnly(r.Host), allowed) {
				http.Error(w, "Bad Request (invalid host)", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostAllowed(host string, allowed []string) bool {
	for _, pattern := range allowed {
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "."):
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
		case host == pattern:
			return true
		}
	}
	return false
}

func hostOnly(hostport string) string {
	hostport = strings.ToLower(hostport)
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return hostport
}
