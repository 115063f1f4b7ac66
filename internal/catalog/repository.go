package catalog

import (
	"context"

	"github.com/opsledger/opsledger/internal/domain"
)

// Repository defines the interface for catalog data operations. All reads
// and writes are scoped to the owning user.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceByID(ctx context.Context, ownerID, id string) (*domain.Service, error)
	GetServiceBySlug(ctx context.Context, ownerID, slug string) (*domain.Service, error)
	ListServices(ctx context.Context, ownerID string) ([]domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	DeleteService(ctx context.Context, ownerID, id string) error

	CreateRunbook(ctx context.Context, runbook *domain.Runbook) error
	GetRunbookByID(ctx context.Context, ownerID, id string) (*domain.Runbook, error)
	ListRunbooksByService(ctx context.Context, ownerID, serviceID string) ([]domain.Runbook, error)
	UpdateRunbook(ctx context.Context, runbook *domain.Runbook) error
	DeleteRunbook(ctx context.Context, ownerID, id string) error

	// LatestRunbookForService returns the newest runbook for the service,
	// preferring published over draft. Returns ErrRunbookNotFound when the
	// service has no runbooks.
	LatestRunbookForService(ctx context.Context, ownerID, serviceID string) (*domain.Runbook, error)
}
