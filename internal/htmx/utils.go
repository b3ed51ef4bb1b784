package htmx

import (
	"net/http"
)

// Redirect sends htmx requests an HX-Redirect header so the client performs
// a full navigation; other requests get a plain 303.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// IsBoosted reports an hx-boost navigation, which expects a full page.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("HX-Boosted") == "true"
}

// Partial reports whether only a fragment should be rendered.
func Partial(r *http.Request) bool {
	return IsHTMX(r) && !IsBoosted(r)
}
