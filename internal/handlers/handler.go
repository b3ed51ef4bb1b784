package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/yads-project/yads/components/pages"
	"github.com/yads-project/yads/internal/cache"
	"github.com/yads-project/yads/internal/csrf"
	"github.com/yads-project/yads/internal/middleware"
	"github.com/yads-project/yads/internal/models"
	"github.com/yads-project/yads/internal/users"
)

const userListTTL = 5 * time.Second

type UserStore interface {
	Get(username string) (models.User, error)
	List(f models.UserFilter) []models.User
	SetActive(username string, active bool) (models.User, error)
}

type Handler struct {
	assets    pages.Assets
	users     UserStore
	userList  *cache.Cache[[]models.User]
	adminPath string
	logger    *slog.Logger
	now       func() time.Time
}

func New(assets pages.Assets, store UserStore, adminPath string, logger *slog.Logger) *Handler {
	return &Handler{
		assets:    assets,
		users:     store,
		userList:  cache.New[[]models.User](userListTTL),
		adminPath: adminPath,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *Handler) page(r *http.Request, title string, body templ.Component) templ.Component {
	common := middleware.GetCommon(r.Context())
	return pages.Base(pages.Page{
		Title:     title,
		Assets:    h.assets,
		Debug:     common.Debug,
		UseVite:   common.UseVite,
		CSRFToken: csrf.Token(r.Context()),
		Body:      body,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.serverError(w, r, err)
	}
}

func (h *Handler) serverError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	if errors.Is(err, users.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	h.logger.Error("handler error", "path", r.URL.Path, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
