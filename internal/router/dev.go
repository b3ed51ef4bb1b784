package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/yads-project/yads/internal/config"
	"github.com/yads-project/yads/internal/vite"
)

func registerDevRoutes(r *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	proxy, err := vite.NewProxy(cfg.ViteURL)
	if err != nil {
		logger.Error("vite proxy disabled", "vite_url", cfg.ViteURL, "err", err)
		return
	}
	vite.Register(r, cfg.StaticURL, proxy)
	logger.Info("proxying vite dev server", "vite_url", cfg.ViteURL)
}
