package postmortem

import (
	"fmt"
	"strings"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/timefmt"
)

// Synthesize derives a postmortem draft from an incident and its timeline.
// It is a pure function: it runs exactly once per incident, at first
// materialization, and the stored result is never re-derived afterwards.
// Entries of type note are left out; notes are free-form color, not
// structured signal.
func Synthesize(incident *domain.Incident, entries []domain.TimelineEntry) *domain.Postmortem {
	return &domain.Postmortem{
		IncidentID:  incident.ID,
		Impact:      impactSection(incident),
		RootCause:   rootCauseSection(entries),
		Detection:   detectionSection(entries),
		Resolution:  resolutionSection(incident, entries),
		ActionItems: actionItemsSection(),
	}
}

func impactSection(incident *domain.Incident) string {
	var b strings.Builder
	b.WriteString("## Impact Summary\n\n")

	if strings.TrimSpace(incident.Summary) != "" {
		b.WriteString(incident.Summary)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "- **Severity**: %s\n", strings.ToUpper(string(incident.Severity)))
	fmt.Fprintf(&b, "- **Started**: %s\n", timefmt.Timestamp(incident.StartedAt))

	if incident.EndedAt != nil {
		fmt.Fprintf(&b, "- **Ended**: %s\n", timefmt.Timestamp(*incident.EndedAt))
		fmt.Fprintf(&b, "- **Duration**: %s\n", timefmt.Duration(incident.EndedAt.Sub(incident.StartedAt)))
	}

	b.WriteString("\n*TODO: Describe the customer and business impact.*\n")
	return b.String()
}

func rootCauseSection(entries []domain.TimelineEntry) string {
	var b strings.Builder
	b.WriteString("## Root Cause Analysis\n\n")

	writeEntryList(&b, "### Decisions Made During Incident", entries, domain.EntryTypeDecision)

	b.WriteString("*TODO: Identify the root cause using 5 Whys or similar technique.*\n")
	return b.String()
}

func detectionSection(entries []domain.TimelineEntry) string {
	var b strings.Builder
	b.WriteString("## Detection\n\n")

	writeEntryList(&b, "### Observations During Incident", entries, domain.EntryTypeObservation)

	b.WriteString("*TODO: How was the incident detected? Could detection be improved?*\n")
	return b.String()
}

func resolutionSection(incident *domain.Incident, entries []domain.TimelineEntry) string {
	var b strings.Builder
	b.WriteString("## Resolution\n\n")

	if incident.RunbookTitle != nil {
		b.WriteString("### Runbook Reference\n")
		fmt.Fprintf(&b, "- **Runbook**: %s\n\n", *incident.RunbookTitle)
	}

	writeEntryList(&b, "### Actions Taken", entries, domain.EntryTypeAction)

	b.WriteString("*TODO: Describe the resolution steps and confirm the fix.*\n")
	return b.String()
}

func actionItemsSection() string {
	var b strings.Builder
	b.WriteString("## Action Items\n\n")
	b.WriteString("| Action | Owner | Due Date | Status |\n")
	b.WriteString("|--------|-------|----------|--------|\n")
	b.WriteString("| *TODO: Add action items* | | | |\n\n")
	b.WriteString("*TODO: List follow-up actions to prevent recurrence.*\n")
	return b.String()
}

// writeEntryList renders entries of one type as a time-stamped bullet list
// under a heading. Nothing is written when no entry matches.
func writeEntryList(b *strings.Builder, heading string, entries []domain.TimelineEntry, entryType domain.TimelineEntryType) {
	wrote := false
	for _, e := range entries {
		if e.EntryType != entryType {
			continue
		}
		if !wrote {
			b.WriteString(heading)
			b.WriteString("\n")
			wrote = true
		}
		fmt.Fprintf(b, "- [%s] %s\n", timefmt.Clock(e.OccurredAt), e.Body)
	}
	if wrote {
		b.WriteString("\n")
	}
}
