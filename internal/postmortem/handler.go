package postmortem

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opsledger/opsledger/internal/incidents"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
)

// Handler handles HTTP requests for the postmortem module.
type Handler struct {
	service *Service
}

// NewHandler creates a new postmortem handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers postmortem routes under an incident. All routes
// require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents/{incidentID}/postmortem", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: ErrPostmortemNotFound, Status: http.StatusNotFound},
}

// Get handles GET /incidents/{incidentID}/postmortem.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pm, err := h.service.GetOrSynthesize(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, pm)
}

// UpdateRequest represents postmortem patch request body. Absent sections
// are left untouched.
type UpdateRequest struct {
	Impact      *string `json:"impact"`
	RootCause   *string `json:"root_cause"`
	Detection   *string `json:"detection"`
	Resolution  *string `json:"resolution"`
	ActionItems *string `json:"action_items"`
}

// Update handles PATCH /incidents/{incidentID}/postmortem.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	pm, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"), UpdateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, pm)
}
