package export

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opsledger/opsledger/internal/incidents"
	"github.com/opsledger/opsledger/internal/pkg/ctxlog"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
)

// Handler handles HTTP requests for the export module.
type Handler struct {
	service *Service
}

// NewHandler creates a new export handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers export routes under an incident. All routes
// require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents/{incidentID}/export", h.Export)
}

var errorMappings = []httputil.ErrorMapping{
	{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
}

// Export handles GET /incidents/{incidentID}/export. The document is served
// as a markdown attachment rather than a JSON envelope.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Export(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc.Content)); err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to write export response", "error", err)
	}
}
