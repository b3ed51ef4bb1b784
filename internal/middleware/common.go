package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const commonKey = contextKey("common")

// Common holds the flags every page can read.
type Common struct {
	Debug   bool
	UseVite bool
}

func WithCommon(c Common) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), commonKey, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCommon(ctx context.Context) Common {
	if c, ok := ctx.Value(commonKey).(Common); ok {
		return c
	}
	return Common{}
}
