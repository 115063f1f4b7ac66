package timeline

import (
	"context"

	"github.com/opsledger/opsledger/internal/domain"
)

// Repository defines the interface for timeline data operations. Entries are
// append-only: there is no update or single-entry delete, removal happens
// only by cascade with the parent incident.
type Repository interface {
	Append(ctx context.Context, entry *domain.TimelineEntry) error

	// ListForIncident returns entries ordered by occurred_at ascending with
	// created_at as tiebreaker.
	ListForIncident(ctx context.Context, incidentID string) ([]domain.TimelineEntry, error)
}
