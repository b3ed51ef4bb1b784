package handlers

import (
	"net/http"

	"github.com/yads-project/yads/components/pages"
)

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.page(r, "yads", pages.Home()))
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
