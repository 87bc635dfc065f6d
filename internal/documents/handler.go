package documents

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docverify/pkg/platform/httputil"
)

// Handler serves the document type catalog.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/document-types", h.HandleListTypes)
}

func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"types": Types()})
}
