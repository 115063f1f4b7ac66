// Package timeline implements the append-only event log attached to an
// incident.
package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
)

// IncidentChecker verifies that an incident exists and belongs to the caller.
type IncidentChecker interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Incident, error)
}

// Service implements timeline business logic.
type Service struct {
	repo      Repository
	incidents IncidentChecker
}

// NewService creates a new timeline service.
func NewService(repo Repository, incidents IncidentChecker) *Service {
	return &Service{repo: repo, incidents: incidents}
}

// AppendInput contains data for appending a timeline entry.
type AppendInput struct {
	EntryType domain.TimelineEntryType
	Body      string
}

// Append records a new entry on the incident's timeline. OccurredAt is
// always assigned server-side at append time, never taken from the caller.
func (s *Service) Append(ctx context.Context, ownerID, incidentID string, input AppendInput) (*domain.TimelineEntry, error) {
	if !input.EntryType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntryType, input.EntryType)
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrEmptyBody
	}

	if _, err := s.incidents.Get(ctx, ownerID, incidentID); err != nil {
		return nil, err
	}

	entry := &domain.TimelineEntry{
		IncidentID: incidentID,
		EntryType:  input.EntryType,
		OccurredAt: time.Now().UTC(),
		Body:       input.Body,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append timeline entry: %w", err)
	}
	return entry, nil
}

// ListFor returns the incident's timeline in chronological order.
func (s *Service) ListFor(ctx context.Context, ownerID, incidentID string) ([]domain.TimelineEntry, error) {
	if _, err := s.incidents.Get(ctx, ownerID, incidentID); err != nil {
		return nil, err
	}
	return s.repo.ListForIncident(ctx, incidentID)
}
