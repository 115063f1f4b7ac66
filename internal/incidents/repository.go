package incidents

import (
	"context"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
)

// Repository defines the interface for incident data operations. All reads
// and writes are scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Incident, error)
	List(ctx context.Context, ownerID string, filter Filter) ([]domain.Incident, error)
	Update(ctx context.Context, incident *domain.Incident) error
	Delete(ctx context.Context, ownerID, id string) error

	// TransitionStatus performs a conditional status write: the update only
	// lands if the incident's status still equals from. setEnded controls
	// whether ended_at is written (to endedAt, possibly nil) or left as is.
	// Returns ErrTransitionConflict when the condition does not hold.
	TransitionStatus(ctx context.Context, ownerID, id string, from, to domain.IncidentStatus, endedAt *time.Time, setEnded bool) (*domain.Incident, error)
}

// Filter represents filter criteria for listing incidents.
type Filter struct {
	ServiceID *string
	Status    *domain.IncidentStatus
}
