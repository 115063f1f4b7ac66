package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers catalog routes. All routes require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Post("/", h.CreateService)
		r.Get("/", h.ListServices)
		r.Route("/{serviceID}", func(r chi.Router) {
			r.Get("/", h.GetService)
			r.Patch("/", h.UpdateService)
			r.Delete("/", h.DeleteService)
			r.Get("/runbooks", h.ListRunbooks)
		})
	})

	r.Route("/runbooks", func(r chi.Router) {
		r.Post("/", h.CreateRunbook)
		r.Route("/{runbookID}", func(r chi.Router) {
			r.Get("/", h.GetRunbook)
			r.Patch("/", h.UpdateRunbook)
			r.Delete("/", h.DeleteRunbook)
		})
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrServiceNotFound, Status: http.StatusNotFound},
	{Error: ErrRunbookNotFound, Status: http.StatusNotFound},
	{Error: ErrSlugExists, Status: http.StatusConflict},
	{Error: ErrInvalidSlug, Status: http.StatusBadRequest},
	{Error: ErrInvalidRunbookStatus, Status: http.StatusBadRequest},
}

// CreateServiceRequest represents service creation request body.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// CreateService handles POST /services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	svc, err := h.service.CreateService(r.Context(), httputil.GetUserID(r.Context()), CreateServiceInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, svc)
}

// ListServices handles GET /services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, services)
}

// GetService handles GET /services/{serviceID}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service.GetService(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, svc)
}

// UpdateServiceRequest represents service update request body.
type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateService handles PATCH /services/{serviceID}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	svc, err := h.service.UpdateService(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "serviceID"), UpdateServiceInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, svc)
}

// DeleteService handles DELETE /services/{serviceID}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteService(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateRunbookRequest represents runbook creation request body.
type CreateRunbookRequest struct {
	ServiceID string               `json:"service_id" validate:"required,uuid"`
	Title     string               `json:"title" validate:"required,max=200"`
	Status    domain.RunbookStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Version   int                  `json:"version" validate:"omitempty,min=1"`
	Summary   string               `json:"summary" validate:"max=5000"`
}

// CreateRunbook handles POST /runbooks.
func (h *Handler) CreateRunbook(w http.ResponseWriter, r *http.Request) {
	var req CreateRunbookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	rb, err := h.service.CreateRunbook(r.Context(), httputil.GetUserID(r.Context()), CreateRunbookInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, rb)
}

// GetRunbook handles GET /runbooks/{runbookID}.
func (h *Handler) GetRunbook(w http.ResponseWriter, r *http.Request) {
	rb, err := h.service.GetRunbook(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "runbookID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, rb)
}

// ListRunbooks handles GET /services/{serviceID}/runbooks.
func (h *Handler) ListRunbooks(w http.ResponseWriter, r *http.Request) {
	runbooks, err := h.service.ListRunbooks(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, runbooks)
}

// UpdateRunbookRequest represents runbook update request body.
type UpdateRunbookRequest struct {
	Title   *string               `json:"title" validate:"omitempty,max=200"`
	Status  *domain.RunbookStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Version *int                  `json:"version" validate:"omitempty,min=1"`
	Summary *string               `json:"summary" validate:"omitempty,max=5000"`
}

// UpdateRunbook handles PATCH /runbooks/{runbookID}.
func (h *Handler) UpdateRunbook(w http.ResponseWriter, r *http.Request) {
	var req UpdateRunbookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	rb, err := h.service.UpdateRunbook(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "runbookID"), UpdateRunbookInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, rb)
}

// DeleteRunbook handles DELETE /runbooks/{runbookID}.
func (h *Handler) DeleteRunbook(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteRunbook(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "runbookID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
