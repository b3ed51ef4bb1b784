package router

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yads-project/yads/internal/config"
	"github.com/yads-project/yads/internal/csrf"
	"github.com/yads-project/yads/internal/handlers"
	"github.com/yads-project/yads/internal/middleware"
)

const (
	// hashedAssetsDir is vite's build.assetsDir inside the dist directory.
	hashedAssetsDir       = "assets"
	immutableCacheControl = "public, max-age=31536000, immutable"
)

func New(
	cfg *config.Config,
	h *handlers.Handler,
	protector *csrf.Protector,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AllowedHosts(cfg.AllowedHosts, cfg.Debug))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.WithCommon(middleware.Common{
		Debug:   cfg.Debug,
		UseVite: cfg.UseVite,
	}))

	r.Get("/healthz", h.HandleHealth)

	if cfg.DevServer() {
		registerDevRoutes(r, cfg, logger)
	}

	dist := filepath.Join(cfg.StaticRoot, "dist")
	mountDir(r, cfg.StaticURL, dist,
		chimw.Compress(5),
		immutableAssets(cfg.StaticURL, dist),
	)
	if cfg.Debug {
		mountDir(r, cfg.MediaURL, cfg.MediaRoot)
	}

	r.Group(func(r chi.Router) {
		r.Use(protector.Middleware)

		r.Get("/", h.HandleHome)

		r.Route(cfg.AdminPath(), func(r chi.Router) {
			r.Use(adminAuth(cfg.AdminPassword))

			r.Get("/", h.HandleAdminIndex)
			r.Get("/users/", h.HandleAdminUsers)
			r.Post("/users/{username}/active", h.HandleToggleActive)
		})
	})

	return r
}

// mountDir serves dir under a local URL prefix. Remote prefixes (a CDN) are
// served elsewhere.
func mountDir(r chi.Router, prefix, dir string, mws ...func(http.Handler) http.Handler) {
	if !strings.HasPrefix(prefix, "/") || dir == "" {
		return
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	r.With(mws...).Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
}

// immutableAssets marks existing files in vite's content-hashed output
// directory as cacheable forever.
func immutableAssets(prefix, dir string) func(http.Handler) http.Handler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	hashed := prefix + hashedAssetsDir + "/"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rel, ok := strings.CutPrefix(r.URL.Path, hashed); ok && rel != "" {
				name := filepath.Join(dir, hashedAssetsDir, filepath.FromSlash(path.Clean("/"+rel)))
				if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() {
					w.Header().Set("Cache-Control", immutableCacheControl)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminAuth(password string) func(http.Handler) http.Handler {
	if password == "" {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Forbidden (admin disabled)", http.StatusForbidden)
			})
		}
	}
	return chimw.BasicAuth("admin", map[string]string{"admin": password})
}
