package domain

import "time"

// TimelineEntryType represents the type of a timeline entry.
type TimelineEntryType string

// Timeline entry types.
const (
	EntryTypeNote        TimelineEntryType = "note"
	EntryTypeAction      TimelineEntryType = "action"
	EntryTypeDecision    TimelineEntryType = "decision"
	EntryTypeObservation TimelineEntryType = "observation"
)

// TimelineEntryTypes lists every valid entry type.
var TimelineEntryTypes = []TimelineEntryType{
	EntryTypeNote,
	EntryTypeAction,
	EntryTypeDecision,
	EntryTypeObservation,
}

// IsValid checks if the entry type is valid.
func (t TimelineEntryType) IsValid() bool {
	switch t {
	case EntryTypeNote, EntryTypeAction, EntryTypeDecision, EntryTypeObservation:
		return true
	}
	return false
}

// TimelineEntry is one immutable record of something that happened during an
// incident. OccurredAt is assigned by the server at append time; CreatedAt
// breaks ties between entries sharing an OccurredAt under coarse clocks.
type TimelineEntry struct {
	ID         string            `json:"id"`
	IncidentID string            `json:"incident_id"`
	EntryType  TimelineEntryType `json:"entry_type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}
