// Package incidents implements the incident lifecycle: creation, partial
// updates and the status state machine with its conditional transition write.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsledger/opsledger/internal/catalog"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/ctxlog"
	"github.com/opsledger/opsledger/internal/pkg/metrics"
)

// Catalog resolves services and runbooks for incident creation.
type Catalog interface {
	GetService(ctx context.Context, ownerID, id string) (*domain.Service, error)
	GetRunbook(ctx context.Context, ownerID, id string) (*domain.Runbook, error)
	LatestRunbookForService(ctx context.Context, ownerID, serviceID string) (*domain.Runbook, error)
}

// Service implements incident business logic.
type Service struct {
	repo    Repository
	catalog Catalog
}

// NewService creates a new incidents service.
func NewService(repo Repository, cat Catalog) *Service {
	return &Service{repo: repo, catalog: cat}
}

// CreateInput contains data for incident creation.
type CreateInput struct {
	ServiceID string
	Title     string
	Severity  domain.IncidentSeverity
	StartedAt *time.Time
	Summary   string
	RunbookID *string
}

// Create opens a new incident in status open. When no runbook is named, the
// service's newest published runbook (draft as fallback) is attached
// automatically; its title is cached on the incident so later runbook edits
// do not rewrite history.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.Incident, error) {
	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, input.Severity)
	}

	if _, err := s.catalog.GetService(ctx, ownerID, input.ServiceID); err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}

	startedAt := time.Now().UTC()
	if input.StartedAt != nil {
		startedAt = input.StartedAt.UTC()
	}

	incident := &domain.Incident{
		OwnerID:   ownerID,
		ServiceID: input.ServiceID,
		Title:     input.Title,
		Severity:  input.Severity,
		Status:    domain.IncidentStatusOpen,
		StartedAt: startedAt,
		Summary:   input.Summary,
	}

	if err := s.attachRunbook(ctx, ownerID, incident, input.RunbookID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	ctxlog.FromContext(ctx).Info("incident created",
		"incident_id", incident.ID,
		"service_id", incident.ServiceID,
		"severity", incident.Severity,
	)
	return incident, nil
}

func (s *Service) attachRunbook(ctx context.Context, ownerID string, incident *domain.Incident, runbookID *string) error {
	if runbookID != nil {
		rb, err := s.catalog.GetRunbook(ctx, ownerID, *runbookID)
		if err != nil {
			return err
		}
		incident.RunbookID = &rb.ID
		incident.RunbookTitle = &rb.Title
		return nil
	}

	rb, err := s.catalog.LatestRunbookForService(ctx, ownerID, incident.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrRunbookNotFound) {
			// Services without runbooks are fine.
			return nil
		}
		return fmt.Errorf("resolve latest runbook: %w", err)
	}
	incident.RunbookID = &rb.ID
	incident.RunbookTitle = &rb.Title
	return nil
}

// Get returns the incident with the given id.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's incidents, optionally filtered.
func (s *Service) List(ctx context.Context, ownerID string, filter Filter) ([]domain.Incident, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *filter.Status)
	}
	return s.repo.List(ctx, ownerID, filter)
}

// UpdateInput contains fields to update on an incident. Nil fields are left
// unchanged. Status is deliberately absent: status only moves through
// Transition.
type UpdateInput struct {
	Title    *string
	Severity *domain.IncidentSeverity
	Summary  *string
	EndedAt  *time.Time
}

// Update applies a partial update to an incident. EndedAt may only be
// adjusted while the incident is resolved, since ended_at is set exactly
// when status is resolved.
func (s *Service) Update(ctx context.Context, ownerID, id string, input UpdateInput) (*domain.Incident, error) {
	incident, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Severity != nil {
		if !input.Severity.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, *input.Severity)
		}
		incident.Severity = *input.Severity
	}
	if input.Summary != nil {
		incident.Summary = *input.Summary
	}
	if input.EndedAt != nil {
		if incident.Status != domain.IncidentStatusResolved {
			return nil, ErrEndedAtNotResolved
		}
		t := input.EndedAt.UTC()
		incident.EndedAt = &t
	}

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return incident, nil
}

// Transition moves an incident to a new status, enforcing the transition
// table. Entering resolved stamps ended_at with the current time; reopening
// clears it, so a reopened incident looks like one that never ended. The
// write is conditional on the status read here, so two racing transitions
// cannot both land.
func (s *Service) Transition(ctx context.Context, ownerID, id string, target domain.IncidentStatus) (*domain.StatusTransition, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	incident, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	from := incident.Status
	if !from.CanTransitionTo(target) {
		return nil, &domain.InvalidTransitionError{
			Current:   from,
			Requested: target,
			Valid:     from.ValidTransitions(),
		}
	}

	var endedAt *time.Time
	setEnded := false
	switch target {
	case domain.IncidentStatusResolved:
		now := time.Now().UTC()
		endedAt = &now
		setEnded = true
	case domain.IncidentStatusOpen:
		setEnded = true
	}

	updated, err := s.repo.TransitionStatus(ctx, ownerID, id, from, target, endedAt, setEnded)
	if err != nil {
		return nil, err
	}

	metrics.IncidentTransitions.WithLabelValues(string(from), string(target)).Inc()
	ctxlog.FromContext(ctx).Info("incident status changed",
		"incident_id", id,
		"from", from,
		"to", target,
	)

	return &domain.StatusTransition{
		IncidentID:     id,
		PreviousStatus: from,
		NewStatus:      updated.Status,
		EndedAt:        updated.EndedAt,
	}, nil
}

// Delete removes an incident. Timeline entries and any postmortem cascade.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}
