package incidents

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/opsledger/opsledger/internal/catalog"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers incident routes. All routes require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{incidentID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/transition", h.Transition)
		})
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: catalog.ErrServiceNotFound, Status: http.StatusNotFound},
	{Error: catalog.ErrRunbookNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
	{Error: ErrEndedAtNotResolved, Status: http.StatusUnprocessableEntity},
	{Error: ErrTransitionConflict, Status: http.StatusConflict},
}

// CreateRequest represents incident creation request body.
type CreateRequest struct {
	ServiceID string                  `json:"service_id" validate:"required,uuid"`
	Title     string                  `json:"title" validate:"required,max=300"`
	Severity  domain.IncidentSeverity `json:"severity" validate:"required"`
	StartedAt *time.Time              `json:"started_at"`
	Summary   string                  `json:"summary" validate:"max=10000"`
	RunbookID *string                 `json:"runbook_id" validate:"omitempty,uuid"`
}

// Create handles POST /incidents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Create(r.Context(), httputil.GetUserID(r.Context()), CreateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// List handles GET /incidents with optional service_id and status filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if v := r.URL.Query().Get("service_id"); v != "" {
		filter.ServiceID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.IncidentStatus(v)
		filter.Status = &status
	}

	list, err := h.service.List(r.Context(), httputil.GetUserID(r.Context()), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// Get handles GET /incidents/{incidentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.Get(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// UpdateRequest represents incident update request body. Status is absent:
// status changes go through the transition endpoint.
type UpdateRequest struct {
	Title    *string                  `json:"title" validate:"omitempty,max=300"`
	Severity *domain.IncidentSeverity `json:"severity"`
	Summary  *string                  `json:"summary" validate:"omitempty,max=10000"`
	EndedAt  *time.Time               `json:"ended_at"`
}

// Update handles PATCH /incidents/{incidentID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"), UpdateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// TransitionRequest represents status transition request body.
type TransitionRequest struct {
	Status domain.IncidentStatus `json:"status" validate:"required"`
}

// Transition handles POST /incidents/{incidentID}/transition.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.Transition(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"), req.Status)
	if err != nil {
		var invalid *domain.InvalidTransitionError
		if errors.As(err, &invalid) {
			h.respondInvalidTransition(w, invalid)
			return
		}
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// respondInvalidTransition returns the structured detail a client needs to
// render a corrective UI: current status, requested status and the legal
// next statuses.
func (h *Handler) respondInvalidTransition(w http.ResponseWriter, e *domain.InvalidTransitionError) {
	httputil.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error": map[string]interface{}{
			"message":        e.Error(),
			"current_status": e.Current,
			"requested":      e.Requested,
			"valid_next":     e.Valid,
		},
	})
}

// Delete handles DELETE /incidents/{incidentID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "incidentID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
