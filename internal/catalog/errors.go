package catalog

import "errors"

// Service errors.
var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrRunbookNotFound      = errors.New("runbook not found")
	ErrSlugExists           = errors.New("service slug already exists")
	ErrInvalidSlug          = errors.New("invalid slug")
	ErrInvalidRunbookStatus = errors.New("unrecognized runbook status value")
)
