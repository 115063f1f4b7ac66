package domain

import "time"

// Postmortem is the structured retrospective document tied 1:1 to an
// incident. Each section is independent markdown; sections are drafted once
// from the timeline and hand-edited afterwards.
type Postmortem struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incident_id"`
	Impact      string    `json:"impact"`
	RootCause   string    `json:"root_cause"`
	Detection   string    `json:"detection"`
	Resolution  string    `json:"resolution"`
	ActionItems string    `json:"action_items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
