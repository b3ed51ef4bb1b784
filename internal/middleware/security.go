package middleware

import (
	"fmt"
	"net/http"

	"github.com/yads-project/yads/internal/config"
)

func Security(sec config.Security) func(http.Handler) http.Handler {
	hsts := ""
	if sec.HSTSSeconds > 0 {
		hsts = fmt.Sprintf("max-age=%d", sec.HSTSSeconds)
		if sec.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if sec.HSTSPreload {
			hsts += "; preload"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")

			if sec.TrustForwardedProto {
				if !isHTTPS(r) {
					target := "https://" + r.Host + r.URL.RequestURI()
					http.Redirect(w, r, target, http.StatusMovedPermanently)
					return
				}
				if hsts != "" {
					h.Set("Strict-Transport-Security", hsts)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
