// Package postgres provides PostgreSQL implementation of the postmortem repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/postmortem"
)

// Repository implements the postmortem.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIfAbsent inserts the postmortem unless the incident already has one.
// ON CONFLICT DO NOTHING makes the unique incident_id index the idempotence
// boundary, so racing materializations cannot produce two rows.
func (r *Repository) CreateIfAbsent(ctx context.Context, pm *domain.Postmortem) error {
	query := `
		INSERT INTO postmortems (incident_id, impact, root_cause, detection, resolution, action_items)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (incident_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		pm.IncidentID,
		pm.Impact,
		pm.RootCause,
		pm.Detection,
		pm.Resolution,
		pm.ActionItems,
	)
	if err != nil {
		return fmt.Errorf("create postmortem: %w", err)
	}
	return nil
}

// GetByIncidentID retrieves the incident's postmortem.
func (r *Repository) GetByIncidentID(ctx context.Context, incidentID string) (*domain.Postmortem, error) {
	query := `
		SELECT id, incident_id, impact, root_cause, detection, resolution, action_items, created_at, updated_at
		FROM postmortems
		WHERE incident_id = $1
	`
	var pm domain.Postmortem
	err := r.db.QueryRow(ctx, query, incidentID).Scan(
		&pm.ID,
		&pm.IncidentID,
		&pm.Impact,
		&pm.RootCause,
		&pm.Detection,
		&pm.Resolution,
		&pm.ActionItems,
		&pm.CreatedAt,
		&pm.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, postmortem.ErrPostmortemNotFound
		}
		return nil, fmt.Errorf("get postmortem: %w", err)
	}
	return &pm, nil
}

// Update persists edited sections.
func (r *Repository) Update(ctx context.Context, pm *domain.Postmortem) error {
	query := `
		UPDATE postmortems
		SET impact = $1, root_cause = $2, detection = $3, resolution = $4, action_items = $5, updated_at = NOW()
		WHERE incident_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		pm.Impact,
		pm.RootCause,
		pm.Detection,
		pm.Resolution,
		pm.ActionItems,
		pm.IncidentID,
	).Scan(&pm.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return postmortem.ErrPostmortemNotFound
		}
		return fmt.Errorf("update postmortem: %w", err)
	}
	return nil
}
