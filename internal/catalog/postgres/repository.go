// Package postgres provides PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsledger/opsledger/internal/catalog"
	"github.com/opsledger/opsledger/internal/domain"
)

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateService creates a new service in the database.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (owner_id, name, slug, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.OwnerID,
		service.Name,
		service.Slug,
		service.Description,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetServiceByID retrieves a service by id, scoped to the owner.
func (r *Repository) GetServiceByID(ctx context.Context, ownerID, id string) (*domain.Service, error) {
	query := `
		SELECT id, owner_id, name, slug, description, created_at, updated_at
		FROM services
		WHERE id = $1 AND owner_id = $2
	`
	return r.scanService(r.db.QueryRow(ctx, query, id, ownerID))
}

// GetServiceBySlug retrieves a service by slug, scoped to the owner.
func (r *Repository) GetServiceBySlug(ctx context.Context, ownerID, slug string) (*domain.Service, error) {
	query := `
		SELECT id, owner_id, name, slug, description, created_at, updated_at
		FROM services
		WHERE slug = $1 AND owner_id = $2
	`
	return r.scanService(r.db.QueryRow(ctx, query, slug, ownerID))
}

func (r *Repository) scanService(row pgx.Row) (*domain.Service, error) {
	var svc domain.Service
	err := row.Scan(
		&svc.ID,
		&svc.OwnerID,
		&svc.Name,
		&svc.Slug,
		&svc.Description,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}
	return &svc, nil
}

// ListServices retrieves all services for the owner ordered by name.
func (r *Repository) ListServices(ctx context.Context, ownerID string) ([]domain.Service, error) {
	query := `
		SELECT id, owner_id, name, slug, description, created_at, updated_at
		FROM services
		WHERE owner_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var svc domain.Service
		err := rows.Scan(
			&svc.ID,
			&svc.OwnerID,
			&svc.Name,
			&svc.Slug,
			&svc.Description,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// UpdateService updates a service's mutable fields.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.ID,
		service.OwnerID,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrServiceNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// DeleteService removes a service. Runbooks and incidents cascade.
func (r *Repository) DeleteService(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}

// CreateRunbook creates a new runbook in the database.
func (r *Repository) CreateRunbook(ctx context.Context, runbook *domain.Runbook) error {
	query := `
		INSERT INTO runbooks (owner_id, service_id, title, status, version, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		runbook.OwnerID,
		runbook.ServiceID,
		runbook.Title,
		runbook.Status,
		runbook.Version,
		runbook.Summary,
	).Scan(&runbook.ID, &runbook.CreatedAt, &runbook.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create runbook: %w", err)
	}
	return nil
}

// GetRunbookByID retrieves a runbook by id, scoped to the owner.
func (r *Repository) GetRunbookByID(ctx context.Context, ownerID, id string) (*domain.Runbook, error) {
	query := `
		SELECT id, owner_id, service_id, title, status, version, summary, created_at, updated_at
		FROM runbooks
		WHERE id = $1 AND owner_id = $2
	`
	return r.scanRunbook(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *Repository) scanRunbook(row pgx.Row) (*domain.Runbook, error) {
	var rb domain.Runbook
	err := row.Scan(
		&rb.ID,
		&rb.OwnerID,
		&rb.ServiceID,
		&rb.Title,
		&rb.Status,
		&rb.Version,
		&rb.Summary,
		&rb.CreatedAt,
		&rb.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrRunbookNotFound
		}
		return nil, fmt.Errorf("scan runbook: %w", err)
	}
	return &rb, nil
}

// ListRunbooksByService retrieves runbooks for a service, newest first.
func (r *Repository) ListRunbooksByService(ctx context.Context, ownerID, serviceID string) ([]domain.Runbook, error) {
	query := `
		SELECT id, owner_id, service_id, title, status, version, summary, created_at, updated_at
		FROM runbooks
		WHERE service_id = $1 AND owner_id = $2
		ORDER BY version DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, serviceID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list runbooks: %w", err)
	}
	defer rows.Close()

	runbooks := make([]domain.Runbook, 0)
	for rows.Next() {
		var rb domain.Runbook
		err := rows.Scan(
			&rb.ID,
			&rb.OwnerID,
			&rb.ServiceID,
			&rb.Title,
			&rb.Status,
			&rb.Version,
			&rb.Summary,
			&rb.CreatedAt,
			&rb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan runbook: %w", err)
		}
		runbooks = append(runbooks, rb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runbooks: %w", err)
	}
	return runbooks, nil
}

// UpdateRunbook updates a runbook's mutable fields.
func (r *Repository) UpdateRunbook(ctx context.Context, runbook *domain.Runbook) error {
	query := `
		UPDATE runbooks
		SET title = $1, status = $2, version = $3, summary = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		runbook.Title,
		runbook.Status,
		runbook.Version,
		runbook.Summary,
		runbook.ID,
		runbook.OwnerID,
	).Scan(&runbook.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrRunbookNotFound
		}
		return fmt.Errorf("update runbook: %w", err)
	}
	return nil
}

// DeleteRunbook removes a runbook. Incidents keep the title they recorded
// at attach time.
func (r *Repository) DeleteRunbook(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM runbooks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete runbook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrRunbookNotFound
	}
	return nil
}

// LatestRunbookForService returns the newest runbook for a service,
// published status winning over draft, then highest version.
func (r *Repository) LatestRunbookForService(ctx context.Context, ownerID, serviceID string) (*domain.Runbook, error) {
	query := `
		SELECT id, owner_id, service_id, title, status, version, summary, created_at, updated_at
		FROM runbooks
		WHERE service_id = $1 AND owner_id = $2
		ORDER BY (status = 'published') DESC, version DESC, created_at DESC
		LIMIT 1
	`
	return r.scanRunbook(r.db.QueryRow(ctx, query, serviceID, ownerID))
}
