package vite

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// NewProxy forwards requests to the vite dev server. Websocket upgrades for
// HMR pass through the reverse proxy unchanged.
func NewProxy(viteURL string) (http.Handler, error) {
	target, err := url.Parse(viteURL)
	if err != nil {
		return nil, fmt.Errorf("parse vite url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("vite url %q must include scheme and host", viteURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		http.Error(w, "vite dev server unavailable: "+err.Error(), http.StatusBadGateway)
	}
	return proxy, nil
}

// Register mounts the dev server paths that pages reach through the app
// origin rather than the dev server URL.
func Register(r chi.Router, staticURL string, proxy http.Handler) {
	r.Handle("/@vite/*", proxy)
	r.Handle("/@fs/*", proxy)
	r.Handle("/@id/*", proxy)
	r.Handle("/node_modules/*", proxy)
	r.Handle("/__vite_ping", proxy)

	if strings.HasPrefix(staticURL, "/") {
		r.Handle(strings.TrimSuffix(staticURL, "/")+"/@vite/*", proxy)
	}
}
