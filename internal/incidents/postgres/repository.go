// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/incidents"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, owner_id, service_id, runbook_id, runbook_title, title,
	severity, status, started_at, ended_at, summary, created_at, updated_at`

// Create creates a new incident in the database.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (owner_id, service_id, runbook_id, runbook_title, title, severity, status, started_at, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.OwnerID,
		incident.ServiceID,
		incident.RunbookID,
		incident.RunbookTitle,
		incident.Title,
		incident.Severity,
		incident.Status,
		incident.StartedAt,
		incident.Summary,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by id, scoped to the owner.
func (r *Repository) GetByID(ctx context.Context, ownerID, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 AND owner_id = $2`
	return scanIncident(r.db.QueryRow(ctx, query, id, ownerID))
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.OwnerID,
		&inc.ServiceID,
		&inc.RunbookID,
		&inc.RunbookTitle,
		&inc.Title,
		&inc.Severity,
		&inc.Status,
		&inc.StartedAt,
		&inc.EndedAt,
		&inc.Summary,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("scan incident: %w", err)
	}
	return &inc, nil
}

// List retrieves the owner's incidents, newest first.
func (r *Repository) List(ctx context.Context, ownerID string, filter incidents.Filter) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filter.ServiceID != nil {
		args = append(args, *filter.ServiceID)
		query += fmt.Sprintf(" AND service_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY started_at DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Incident, 0)
	for rows.Next() {
		var inc domain.Incident
		err := rows.Scan(
			&inc.ID,
			&inc.OwnerID,
			&inc.ServiceID,
			&inc.RunbookID,
			&inc.RunbookTitle,
			&inc.Title,
			&inc.Severity,
			&inc.Status,
			&inc.StartedAt,
			&inc.EndedAt,
			&inc.Summary,
			&inc.CreatedAt,
			&inc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return out, nil
}

// Update updates an incident's mutable fields. Status is not written here;
// status changes go through TransitionStatus.
func (r *Repository) Update(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $1, severity = $2, summary = $3, ended_at = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Severity,
		incident.Summary,
		incident.EndedAt,
		incident.ID,
		incident.OwnerID,
	).Scan(&incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// Delete removes an incident. Timeline entries and postmortem cascade.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// TransitionStatus performs a compare-and-swap on the incident's status.
// The WHERE clause pins the expected current status, so a concurrent
// transition that already moved the row makes this one return
// ErrTransitionConflict instead of blindly overwriting.
func (r *Repository) TransitionStatus(ctx context.Context, ownerID, id string, from, to domain.IncidentStatus, endedAt *time.Time, setEnded bool) (*domain.Incident, error) {
	var row pgx.Row
	if setEnded {
		query := `
			UPDATE incidents
			SET status = $1, ended_at = $2, updated_at = NOW()
			WHERE id = $3 AND owner_id = $4 AND status = $5
			RETURNING ` + incidentColumns
		row = r.db.QueryRow(ctx, query, to, endedAt, id, ownerID, from)
	} else {
		query := `
			UPDATE incidents
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND owner_id = $3 AND status = $4
			RETURNING ` + incidentColumns
		row = r.db.QueryRow(ctx, query, to, id, ownerID, from)
	}

	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, incidents.ErrIncidentNotFound) {
			// The row exists (the caller just read it) but no longer matches
			// the expected status.
			return nil, incidents.ErrTransitionConflict
		}
		return nil, fmt.Errorf("transition incident status: %w", err)
	}
	return inc, nil
}
