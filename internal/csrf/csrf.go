package csrf

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/securecookie"
)

const (
	CookieName = "csrftoken"
	// SecureCookieName is used when cookies are HTTPS-only; browsers reject
	// the __Secure- prefix on cookies without the Secure attribute.
	SecureCookieName = "__Secure-csrftoken"
	HeaderName = "X-CSRFToken"
	FormField  = "csrfmiddlewaretoken"

	tokenBytes = 32
)

type contextKey string

const tokenKey = contextKey("csrf_token")

type Options struct {
	SecretKey      string
	TrustedOrigins []string
	Secure         bool
	Logger         *slog.Logger
}

// Protector issues a signed token cookie and checks it on unsafe requests.
type Protector struct {
	codec      *securecookie.SecureCookie
	cookieName string
	trusted    []string
	secure     bool
	logger     *slog.Logger
}

func New(opts Options) *Protector {
	hashKey := sha256.Sum256([]byte("csrf-hash:" + opts.SecretKey))
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(86400 * 365)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	trusted := make([]string, 0, len(opts.TrustedOrigins))
	for _, o := range opts.TrustedOrigins {
		trusted = append(trusted, strings.TrimSuffix(strings.ToLower(o), "/"))
	}

	cookieName := CookieName
	if opts.Secure {
		cookieName = SecureCookieName
	}

	return &Protector{
		codec:      codec,
		cookieName: cookieName,
		trusted:    trusted,
		secure:     opts.Secure,
		logger:     logger,
	}
}

// Token returns the request's CSRF token for embedding in forms.
func Token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

func (p *Protector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := p.readCookie(r)

		if !isSafe(r.Method) {
			if reason := p.check(r, token); reason != "" {
				p.logger.Warn("csrf check failed", "reason", reason, "path", r.URL.Path)
				http.Error(w, "Forbidden (CSRF "+reason+")", http.StatusForbidden)
				return
			}
		}

		if token == "" {
			var err error
			token, err = p.issue(w)
			if err != nil {
				p.logger.Error("issue csrf token", "err", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (p *Protector) check(r *http.Request, token string) string {
	if origin := r.Header.Get("Origin"); origin != "" && !p.originAllowed(r, origin) {
		return "origin not trusted"
	}
	if token == "" {
		return "cookie not set"
	}

	submitted := r.Header.Get(HeaderName)
	if submitted == "" {
		submitted = r.PostFormValue(FormField)
	}
	if submitted == "" {
		return "token missing"
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
		return "token incorrect"
	}
	return ""
}

func (p *Protector) originAllowed(r *http.Request, origin string) bool {
	origin = strings.TrimSuffix(strings.ToLower(origin), "/")
	if slices.Contains(p.trusted, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (p *Protector) readCookie(r *http.Request) string {
	c, err := r.Cookie(p.cookieName)
	if err != nil {
		return ""
	}
	var token string
	if err := p.codec.Decode(p.cookieName, c.Value, &token); err != nil {
		return ""
	}
	return token
}

func (p *Protector) issue(w http.ResponseWriter) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	encoded, err := p.codec.Encode(p.cookieName, token)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   86400 * 365,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CookieName reports the name of the token cookie this Protector issues.
func (p *Protector) CookieName() string {
	return p.cookieName
}
