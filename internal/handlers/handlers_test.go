package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yads-project/yads/components/assets"
	"github.com/yads-project/yads/internal/models"
	"github.com/yads-project/yads/internal/users"
)

type fakeStore struct {
	users     map[string]models.User
	listCalls int
}

func (f *fakeStore) Get(username string) (models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return models.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) List(filter models.UserFilter) []models.User {
	f.listCalls++
	var out []models.User
	for _, u := range f.users {
		if filter.Match(u, time.Now()) {
			out = append(out, u)
		}
	}
	return out
}

func (f *fakeStore) SetActive(username string, active bool) (models.User, error) {
	u, err := f.Get(username)
	if err != nil {
		return u, err
	}
	u.IsActive = active
	f.users[username] = u
	return u, nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fsys := fstest.MapFS{
		assets.ManifestPath: &fstest.MapFile{Data: []byte(
			`{"project.js": {"file": "assets/project-abc.js", "isEntry": true, "css": ["assets/project-def.css"]}}`,
		)},
	}
	resolver := assets.NewResolver(fsys, assets.Config{}, logger)
	store := &fakeStore{users: map[string]models.User{
		"ann": {Username: "ann", Email: "ann@example.com", IsStaff: true, IsActive: true, DateJoined: time.Now()},
		"bob": {Username: "bob", IsActive: true, DateJoined: time.Now().AddDate(-2, 0, 0)},
	}}
	return New(resolver, store, "/admin", logger), store
}

func TestHandleHome(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.HandleHome(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `src="/static/assets/project-abc.js"`) {
		t.Errorf("hashed script missing:\n%s", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandleAdminUsers(t *testing.T) {
	h, store := newTestHandler(t)

	tests := []struct {
		name     string
		query    string
		htmx     bool
		status   int
		contains []string
		absent   []string
	}{
		{"all users full page", "", false, http.StatusOK, []string{"<!DOCTYPE html>", "2 users", "ann@example.com"}, nil},
		{"staff filter", "?is_staff=1", false, http.StatusOK, []string{"1 user<"}, []string{"<td>bob</td>"}},
		{"htmx fragment", "?date_joined=this_year", true, http.StatusOK, []string{`<div id="result_list">`, "<td>ann</td>"}, []string{"<!DOCTYPE html>", "<td>bob</td>"}},
		{"bad flag", "?is_staff=perhaps", false, http.StatusBadRequest, nil, nil},
		{"bad range", "?date_joined=decade", false, http.StatusBadRequest, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users/"+tt.query, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			h.HandleAdminUsers(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := rec.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(body, unwanted) {
					t.Errorf("body contains %q", unwanted)
				}
			}
		})
	}

	calls := store.listCalls
	h.HandleAdminUsers(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/users/", nil))
	if store.listCalls != calls {
		t.Errorf("cached listing hit the store again")
	}
}

func TestHandleToggleActive(t *testing.T) {
	h, store := newTestHandler(t)

	r := chi.NewRouter()
	r.Post("/admin/users/{username}/active", h.HandleToggleActive)

	h.HandleAdminUsers(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/users/", nil))
	calls := store.listCalls

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/users/bob/active", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if store.users["bob"].IsActive {
		t.Error("bob still active")
	}

	h.HandleAdminUsers(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/users/", nil))
	if store.listCalls == calls {
		t.Error("listing cache not invalidated after write")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/users/bob/active", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `<div id="result_list">`) {
		t.Errorf("htmx toggle: %d %q", rec.Code, rec.Body.String())
	}
	if !store.users["bob"].IsActive {
		t.Error("bob not reactivated")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/users/nobody/active", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}
