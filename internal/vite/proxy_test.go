package vite

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestProxy_ForwardsRegisteredPaths(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "vite:"+r.URL.Path)
	}))
	defer upstream.Close()

	proxy, err := NewProxy(upstream.URL)
	if err != nil {
		t.Fatalf("NewProxy: %v", err)
	}

	r := chi.NewRouter()
	Register(r, "/static/", proxy)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "app") })

	tests := map[string]string{
		"/@vite/client":        "vite:/@vite/client",
		"/static/@vite/client": "vite:/static/@vite/client",
		"/node_modules/x.js":   "vite:/node_modules/x.js",
		"/":                    "app",
	}
	for path, want := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if got := rec.Body.String(); got != want {
			t.Errorf("GET %s = %q, want %q", path, got, want)
		}
	}
}

func TestProxy_UpstreamDown(t *testing.T) {
	proxy, err := NewProxy("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewProxy: %v", err)
	}
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/@vite/client", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestNewProxy_InvalidURL(t *testing.T) {
	if _, err := NewProxy("localhost"); err == nil {
		t.Error("expected error for url without scheme")
	}
}
