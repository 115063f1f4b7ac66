// Package postgres provides PostgreSQL implementation of the timeline repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsledger/opsledger/internal/domain"
)

// Repository implements the timeline.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Append inserts a new timeline entry.
func (r *Repository) Append(ctx context.Context, entry *domain.TimelineEntry) error {
	query := `
		INSERT INTO timeline_entries (incident_id, entry_type, occurred_at, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.IncidentID,
		entry.EntryType,
		entry.OccurredAt,
		entry.Body,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append timeline entry: %w", err)
	}
	return nil
}

// ListForIncident retrieves entries ordered by occurred_at with created_at
// breaking ties, which keeps ordering deterministic under coarse clock
// resolution.
func (r *Repository) ListForIncident(ctx context.Context, incidentID string) ([]domain.TimelineEntry, error) {
	query := `
		SELECT id, incident_id, entry_type, occurred_at, body, created_at
		FROM timeline_entries
		WHERE incident_id = $1
		ORDER BY occurred_at ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.TimelineEntry, 0)
	for rows.Next() {
		var e domain.TimelineEntry
		err := rows.Scan(
			&e.ID,
			&e.IncidentID,
			&e.EntryType,
			&e.OccurredAt,
			&e.Body,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline entries: %w", err)
	}
	return entries, nil
}
