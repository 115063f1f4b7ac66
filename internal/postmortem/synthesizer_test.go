package postmortem

import (
	"testing"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleIncident() *domain.Incident {
	started := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	ended := started.Add(26*time.Hour + 30*time.Minute)
	return &domain.Incident{
		ID:        "inc-1",
		Title:     "Checkout is down",
		Severity:  domain.IncidentSeveritySev2,
		Status:    domain.IncidentStatusResolved,
		StartedAt: started,
		EndedAt:   &ended,
		Summary:   "Card payments failed for all EU customers.",
	}
}

func entry(entryType domain.TimelineEntryType, at time.Time, body string) domain.TimelineEntry {
	return domain.TimelineEntry{EntryType: entryType, OccurredAt: at, Body: body}
}

func TestSynthesize_ImpactSection(t *testing.T) {
	pm := Synthesize(sampleIncident(), nil)

	assert.Contains(t, pm.Impact, "## Impact Summary")
	assert.Contains(t, pm.Impact, "Card payments failed for all EU customers.")
	assert.Contains(t, pm.Impact, "- **Severity**: SEV2")
	assert.Contains(t, pm.Impact, "- **Started**: 2024-01-15 09:00:00 UTC")
	assert.Contains(t, pm.Impact, "- **Ended**: 2024-01-16 11:30:00 UTC")
	assert.Contains(t, pm.Impact, "- **Duration**: 1d 2h 30m")
	assert.Contains(t, pm.Impact, "*TODO: Describe the customer and business impact.*")
}

func TestSynthesize_ImpactSection_UnresolvedOmitsEnd(t *testing.T) {
	inc := sampleIncident()
	inc.EndedAt = nil

	pm := Synthesize(inc, nil)

	assert.NotContains(t, pm.Impact, "**Ended**")
	assert.NotContains(t, pm.Impact, "**Duration**")
}

func TestSynthesize_SectionsByEntryType(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 15, 0, 0, time.UTC)
	entries := []domain.TimelineEntry{
		entry(domain.EntryTypeObservation, at, "error rate spiked to 40%"),
		entry(domain.EntryTypeDecision, at.Add(time.Minute), "roll back the deploy"),
		entry(domain.EntryTypeAction, at.Add(2*time.Minute), "reverted release 42"),
		entry(domain.EntryTypeNote, at.Add(3*time.Minute), "coffee acquired"),
	}

	pm := Synthesize(sampleIncident(), entries)

	assert.Contains(t, pm.Detection, "### Observations During Incident")
	assert.Contains(t, pm.Detection, "- [10:15] error rate spiked to 40%")
	assert.Contains(t, pm.RootCause, "### Decisions Made During Incident")
	assert.Contains(t, pm.RootCause, "- [10:16] roll back the deploy")
	assert.Contains(t, pm.Resolution, "### Actions Taken")
	assert.Contains(t, pm.Resolution, "- [10:17] reverted release 42")

	// Notes are excluded everywhere.
	for _, section := range []string{pm.Impact, pm.RootCause, pm.Detection, pm.Resolution, pm.ActionItems} {
		assert.NotContains(t, section, "coffee acquired")
	}
}

func TestSynthesize_EmptyTimelineOmitsLists(t *testing.T) {
	pm := Synthesize(sampleIncident(), nil)

	assert.NotContains(t, pm.RootCause, "### Decisions Made During Incident")
	assert.NotContains(t, pm.Detection, "### Observations During Incident")
	assert.NotContains(t, pm.Resolution, "### Actions Taken")
	// The prompting placeholders are still there.
	assert.Contains(t, pm.RootCause, "*TODO: Identify the root cause")
	assert.Contains(t, pm.Detection, "*TODO: How was the incident detected?")
	assert.Contains(t, pm.Resolution, "*TODO: Describe the resolution steps")
}

func TestSynthesize_RunbookReference(t *testing.T) {
	inc := sampleIncident()
	title := "Checkout outage response"
	inc.RunbookTitle = &title

	pm := Synthesize(inc, nil)

	assert.Contains(t, pm.Resolution, "### Runbook Reference")
	assert.Contains(t, pm.Resolution, "- **Runbook**: Checkout outage response")
}

func TestSynthesize_ActionItemsTemplate(t *testing.T) {
	pm := Synthesize(sampleIncident(), nil)

	assert.Contains(t, pm.ActionItems, "## Action Items")
	assert.Contains(t, pm.ActionItems, "| Action | Owner | Due Date | Status |")
	assert.Contains(t, pm.ActionItems, "| *TODO: Add action items* | | | |")
}

func TestSynthesize_Deterministic(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 15, 0, 0, time.UTC)
	entries := []domain.TimelineEntry{
		entry(domain.EntryTypeObservation, at, "error rate spiked"),
		entry(domain.EntryTypeAction, at.Add(time.Minute), "rolled back"),
	}

	a := Synthesize(sampleIncident(), entries)
	b := Synthesize(sampleIncident(), entries)

	assert.Equal(t, a.Impact, b.Impact)
	assert.Equal(t, a.RootCause, b.RootCause)
	assert.Equal(t, a.Detection, b.Detection)
	assert.Equal(t, a.Resolution, b.Resolution)
	assert.Equal(t, a.ActionItems, b.ActionItems)
}
