package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yads-project/yads/components/pages"
	"github.com/yads-project/yads/internal/htmx"
	"github.com/yads-project/yads/internal/models"
)

func (h *Handler) HandleAdminIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.adminPath+"/users/", http.StatusFound)
}

func (h *Handler) HandleAdminUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.userList.Get(filter.Key(), func() ([]models.User, error) {
		return h.users.List(filter), nil
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := pages.UserList{
		AdminPath: h.adminPath,
		Users:     list,
		Query:     r.URL.Query(),
		Now:       h.now(),
	}

	if htmx.Partial(r) {
		h.render(w, r, pages.UserTable(data))
		return
	}
	h.render(w, r, h.page(r, "Select user to change | Admin", pages.UserListBody(data)))
}

func (h *Handler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	u, err := h.users.Get(username)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	u, err = h.users.SetActive(username, !u.IsActive)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.userList.Invalidate()
	h.logger.Info("user active flag changed", "username", username, "active", u.IsActive)

	if htmx.Partial(r) {
		filter, _ := parseUserFilter(r.URL.Query())
		h.render(w, r, pages.UserTable(pages.UserList{
			AdminPath: h.adminPath,
			Users:     h.users.List(filter),
			Query:     r.URL.Query(),
			Now:       h.now(),
		}))
		return
	}
	htmx.Redirect(w, r, h.adminPath+"/users/")
}

func parseUserFilter(q url.Values) (models.UserFilter, error) {
	var f models.UserFilter
	flags := []struct {
		param string
		dst   **bool
	}{
		{"is_staff", &f.IsStaff},
		{"is_superuser", &f.IsSuperuser},
		{"is_active", &f.IsActive},
	}
	for _, fl := range flags {
		v := q.Get(fl.param)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %q", fl.param, v)
		}
		*fl.dst = &b
	}

	joined, ok := models.ParseJoinedRange(q.Get("date_joined"))
	if !ok {
		return f, fmt.Errorf("invalid date_joined: %q", q.Get("date_joined"))
	}
	f.Joined = joined
	return f, nil
}
