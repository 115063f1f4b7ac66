package postmortem

import (
	"context"

	"github.com/opsledger/opsledger/internal/domain"
)

// Repository defines the interface for postmortem data operations.
type Repository interface {
	// CreateIfAbsent inserts the postmortem unless one already exists for
	// the incident. The unique incident_id constraint is the idempotence
	// boundary: under a race, exactly one insert wins and the loser sees
	// the winner's row on re-read.
	CreateIfAbsent(ctx context.Context, pm *domain.Postmortem) error

	GetByIncidentID(ctx context.Context, incidentID string) (*domain.Postmortem, error)
	Update(ctx context.Context, pm *domain.Postmortem) error
}
