// Package postmortem implements the lazy, idempotent postmortem synthesizer:
// a draft is derived from the incident and its timeline exactly once, then
// only hand edits change it.
package postmortem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/ctxlog"
	"github.com/opsledger/opsledger/internal/pkg/metrics"
)

// IncidentSource resolves incidents for the acting user.
type IncidentSource interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Incident, error)
}

// TimelineSource reads an incident's timeline in chronological order.
type TimelineSource interface {
	ListForIncident(ctx context.Context, incidentID string) ([]domain.TimelineEntry, error)
}

// Service implements postmortem business logic.
type Service struct {
	repo      Repository
	incidents IncidentSource
	timeline  TimelineSource
}

// NewService creates a new postmortem service.
func NewService(repo Repository, incidents IncidentSource, timeline TimelineSource) *Service {
	return &Service{repo: repo, incidents: incidents, timeline: timeline}
}

// GetOrSynthesize returns the incident's postmortem, materializing a draft
// on first access. A draft is only auto-created once the incident is
// resolved; before that, reads of a nonexistent postmortem return
// ErrPostmortemNotFound.
func (s *Service) GetOrSynthesize(ctx context.Context, ownerID, incidentID string) (*domain.Postmortem, error) {
	incident, err := s.incidents.Get(ctx, ownerID, incidentID)
	if err != nil {
		return nil, err
	}

	pm, err := s.repo.GetByIncidentID(ctx, incidentID)
	if err == nil {
		return pm, nil
	}
	if !errors.Is(err, ErrPostmortemNotFound) {
		return nil, fmt.Errorf("get postmortem: %w", err)
	}

	if incident.Status != domain.IncidentStatusResolved {
		return nil, ErrPostmortemNotFound
	}

	return s.materialize(ctx, incident)
}

// UpdateInput contains section patches. Nil sections are left untouched.
type UpdateInput struct {
	Impact      *string
	RootCause   *string
	Detection   *string
	Resolution  *string
	ActionItems *string
}

// Update patches the postmortem's sections, materializing a draft first when
// none exists yet. Unlike GetOrSynthesize, this works for incidents in any
// status, so a team can start drafting before formal resolution.
func (s *Service) Update(ctx context.Context, ownerID, incidentID string, input UpdateInput) (*domain.Postmortem, error) {
	incident, err := s.incidents.Get(ctx, ownerID, incidentID)
	if err != nil {
		return nil, err
	}

	pm, err := s.repo.GetByIncidentID(ctx, incidentID)
	if err != nil {
		if !errors.Is(err, ErrPostmortemNotFound) {
			return nil, fmt.Errorf("get postmortem: %w", err)
		}
		pm, err = s.materialize(ctx, incident)
		if err != nil {
			return nil, err
		}
	}

	if input.Impact != nil {
		pm.Impact = *input.Impact
	}
	if input.RootCause != nil {
		pm.RootCause = *input.RootCause
	}
	if input.Detection != nil {
		pm.Detection = *input.Detection
	}
	if input.Resolution != nil {
		pm.Resolution = *input.Resolution
	}
	if input.ActionItems != nil {
		pm.ActionItems = *input.ActionItems
	}
	pm.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, fmt.Errorf("update postmortem: %w", err)
	}
	return pm, nil
}

// materialize synthesizes a draft and persists it, then re-reads so that a
// concurrent materialization of the same incident yields one canonical row.
func (s *Service) materialize(ctx context.Context, incident *domain.Incident) (*domain.Postmortem, error) {
	entries, err := s.timeline.ListForIncident(ctx, incident.ID)
	if err != nil {
		return nil, fmt.Errorf("list timeline for synthesis: %w", err)
	}

	draft := Synthesize(incident, entries)
	if err := s.repo.CreateIfAbsent(ctx, draft); err != nil {
		return nil, fmt.Errorf("store postmortem draft: %w", err)
	}

	pm, err := s.repo.GetByIncidentID(ctx, incident.ID)
	if err != nil {
		return nil, fmt.Errorf("reread postmortem: %w", err)
	}

	metrics.PostmortemSyntheses.Inc()
	ctxlog.FromContext(ctx).Info("postmortem synthesized",
		"incident_id", incident.ID,
		"timeline_entries", len(entries),
	)
	return pm, nil
}
