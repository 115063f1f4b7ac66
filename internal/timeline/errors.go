package timeline

import "errors"

// Service errors.
var (
	ErrInvalidEntryType = errors.New("unrecognized entry type")
	ErrEmptyBody        = errors.New("entry body must not be empty")
)
