// Package export renders an incident, its timeline and its postmortem into
// one sanitized markdown document with a filesystem-safe filename.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/ctxlog"
	"github.com/opsledger/opsledger/internal/pkg/metrics"
	"github.com/opsledger/opsledger/internal/postmortem"
)

// IncidentSource resolves incidents for the acting user.
type IncidentSource interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Incident, error)
}

// TimelineSource reads an incident's timeline in chronological order.
type TimelineSource interface {
	ListForIncident(ctx context.Context, incidentID string) ([]domain.TimelineEntry, error)
}

// PostmortemSource reads a stored postmortem. Export never triggers
// synthesis; it only reflects what is already persisted.
type PostmortemSource interface {
	GetByIncidentID(ctx context.Context, incidentID string) (*domain.Postmortem, error)
}

// ServiceSource resolves a service's display name.
type ServiceSource interface {
	GetService(ctx context.Context, ownerID, id string) (*domain.Service, error)
}

// Service implements the export pipeline.
type Service struct {
	incidents   IncidentSource
	timeline    TimelineSource
	postmortems PostmortemSource
	catalog     ServiceSource
}

// NewService creates a new export service.
func NewService(incidents IncidentSource, timeline TimelineSource, postmortems PostmortemSource, catalog ServiceSource) *Service {
	return &Service{
		incidents:   incidents,
		timeline:    timeline,
		postmortems: postmortems,
		catalog:     catalog,
	}
}

// Export renders the incident's current persisted state. It may run at any
// point in the incident's life; a missing postmortem just omits that
// section.
func (s *Service) Export(ctx context.Context, ownerID, incidentID string) (*Document, error) {
	incident, err := s.incidents.Get(ctx, ownerID, incidentID)
	if err != nil {
		return nil, err
	}

	entries, err := s.timeline.ListForIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}

	pm, err := s.postmortems.GetByIncidentID(ctx, incidentID)
	if err != nil {
		if !errors.Is(err, postmortem.ErrPostmortemNotFound) {
			return nil, fmt.Errorf("get postmortem: %w", err)
		}
		pm = nil
	}

	serviceName := "Unknown"
	if svc, err := s.catalog.GetService(ctx, ownerID, incident.ServiceID); err == nil {
		serviceName = svc.Name
	}

	doc := &Document{
		Content: renderMarkdown(renderInput{
			incident:    incident,
			serviceName: serviceName,
			entries:     entries,
			postmortem:  pm,
			exportedAt:  time.Now().UTC(),
		}),
		Filename:    filename(incident),
		ContentType: "text/markdown",
	}

	metrics.Exports.Inc()
	ctxlog.FromContext(ctx).Info("incident exported",
		"incident_id", incidentID,
		"filename", doc.Filename,
	)
	return doc, nil
}
