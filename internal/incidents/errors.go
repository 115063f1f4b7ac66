package incidents

import "errors"

// Service errors.
var (
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrInvalidStatus      = errors.New("unrecognized status value")
	ErrInvalidSeverity    = errors.New("unrecognized severity value")
	ErrEndedAtNotResolved = errors.New("ended_at can only be set on a resolved incident")

	// ErrTransitionConflict is returned when a concurrent transition changed
	// the incident's status between read and conditional write.
	ErrTransitionConflict = errors.New("incident status changed concurrently")
)
