package domain

import (
	"fmt"
	"strings"
	"time"
)

// IncidentStatus represents the lifecycle status of an incident.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusMitigated     IncidentStatus = "mitigated"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IncidentStatuses lists every valid status.
var IncidentStatuses = []IncidentStatus{
	IncidentStatusOpen,
	IncidentStatusInvestigating,
	IncidentStatusMitigated,
	IncidentStatusResolved,
}

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusInvestigating,
		IncidentStatusMitigated, IncidentStatusResolved:
		return true
	}
	return false
}

// statusTransitions is the directed graph of legal status changes.
// Escalation and de-escalation paths are intentionally asymmetric:
// mitigated -> investigating covers regressions, while open -> mitigated
// is illegal so that every incident is acknowledged via investigating.
var statusTransitions = map[IncidentStatus][]IncidentStatus{
	IncidentStatusOpen:          {IncidentStatusInvestigating},
	IncidentStatusInvestigating: {IncidentStatusMitigated, IncidentStatusResolved},
	IncidentStatusMitigated:     {IncidentStatusResolved, IncidentStatusInvestigating},
	IncidentStatusResolved:      {IncidentStatusOpen},
}

// CanTransitionTo reports whether the status change from s to target is legal.
// Self-transitions are never legal.
func (s IncidentStatus) CanTransitionTo(target IncidentStatus) bool {
	if !s.IsValid() || !target.IsValid() || s == target {
		return false
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from s.
func (s IncidentStatus) ValidTransitions() []IncidentStatus {
	targets := statusTransitions[s]
	out := make([]IncidentStatus, len(targets))
	copy(out, targets)
	return out
}

// IncidentSeverity represents incident severity, sev1 being the most urgent.
type IncidentSeverity string

// Incident severities.
const (
	IncidentSeveritySev1 IncidentSeverity = "sev1"
	IncidentSeveritySev2 IncidentSeverity = "sev2"
	IncidentSeveritySev3 IncidentSeverity = "sev3"
	IncidentSeveritySev4 IncidentSeverity = "sev4"
)

// IncidentSeverities lists every valid severity in decreasing urgency.
var IncidentSeverities = []IncidentSeverity{
	IncidentSeveritySev1,
	IncidentSeveritySev2,
	IncidentSeveritySev3,
	IncidentSeveritySev4,
}

// IsValid checks if the severity is valid.
func (s IncidentSeverity) IsValid() bool {
	switch s {
	case IncidentSeveritySev1, IncidentSeveritySev2,
		IncidentSeveritySev3, IncidentSeveritySev4:
		return true
	}
	return false
}

// Incident represents a tracked operational incident against a service.
//
// EndedAt is set if and only if Status is resolved; the transition
// operation maintains that invariant.
type Incident struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"-"`
	ServiceID    string           `json:"service_id"`
	RunbookID    *string          `json:"runbook_id,omitempty"`
	RunbookTitle *string          `json:"runbook_title,omitempty"`
	Title        string           `json:"title"`
	Severity     IncidentSeverity `json:"severity"`
	Status       IncidentStatus   `json:"status"`
	StartedAt    time.Time        `json:"started_at"`
	EndedAt      *time.Time       `json:"ended_at,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// StatusTransition is the result of a successful status change.
type StatusTransition struct {
	IncidentID     string         `json:"incident_id"`
	PreviousStatus IncidentStatus `json:"previous_status"`
	NewStatus      IncidentStatus `json:"new_status"`
	EndedAt        *time.Time     `json:"ended_at,omitempty"`
}

// InvalidTransitionError is returned when a requested status change is not
// present in the transition table. It carries enough detail for a client to
// render a corrective UI without guessing.
type InvalidTransitionError struct {
	Current   IncidentStatus
	Requested IncidentStatus
	Valid     []IncidentStatus
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("cannot change status from %q to %q: no transitions available", e.Current, e.Requested)
	}
	valid := make([]string, len(e.Valid))
	for i, s := range e.Valid {
		valid[i] = string(s)
	}
	return fmt.Sprintf("cannot change status from %q to %q: valid next statuses: %s",
		e.Current, e.Requested, strings.Join(valid, ", "))
}
