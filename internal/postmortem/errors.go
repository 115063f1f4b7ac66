package postmortem

import "errors"

// ErrPostmortemNotFound is returned when no postmortem exists and none can
// be auto-created (the incident has not reached resolved).
var ErrPostmortemNotFound = errors.New("postmortem not found")
