package timeline

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/incidents"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
)

// Handler handles HTTP requests for the timeline module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new timeline handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers timeline routes under an incident. All routes
// require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents/{incidentID}/timeline", func(r chi.Router) {
		r.Post("/", h.Append)
		r.Get("/", h.List)
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidEntryType, Status: http.StatusBadRequest},
	{Error: ErrEmptyBody, Status: http.StatusBadRequest},
}

// AppendRequest represents timeline append request body. occurred_at is
// deliberately not accepted: it is assigned server-side.
type AppendRequest struct {
	EntryType domain.TimelineEntryType `json:"entry_type" validate:"required"`
	Body      string                   `json:"body" validate:"required,max=10000"`
}

// Append handles POST /incidents/{incidentID}/timeline.
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	entry, err := h.service.Append(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"), AppendInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, entry)
}

// List handles GET /incidents/{incidentID}/timeline.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListFor(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, entries)
}
