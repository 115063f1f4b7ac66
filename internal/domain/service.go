package domain

import "time"

// Service represents a named service that incidents are tracked against.
type Service struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RunbookStatus represents the publication state of a runbook.
type RunbookStatus string

// Runbook statuses.
const (
	RunbookStatusDraft     RunbookStatus = "draft"
	RunbookStatusPublished RunbookStatus = "published"
)

// IsValid checks if the runbook status is valid.
func (s RunbookStatus) IsValid() bool {
	return s == RunbookStatusDraft || s == RunbookStatusPublished
}

// Runbook is an operational document attached to a service. The newest
// published runbook (draft as fallback) is auto-attached to new incidents.
type Runbook struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"-"`
	ServiceID string        `json:"service_id"`
	Title     string        `json:"title"`
	Status    RunbookStatus `json:"status"`
	Version   int           `json:"version"`
	Summary   string        `json:"summary,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
