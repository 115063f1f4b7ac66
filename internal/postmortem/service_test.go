package postmortem

import (
	"context"
	"testing"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing. CreateIfAbsent mirrors
// the ON CONFLICT DO NOTHING insert: a second create is a silent no-op.
type mockRepository struct {
	byIncident map[string]*domain.Postmortem
	creates    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{byIncident: make(map[string]*domain.Postmortem)}
}

func (m *mockRepository) CreateIfAbsent(_ context.Context, pm *domain.Postmortem) error {
	m.creates++
	if _, ok := m.byIncident[pm.IncidentID]; ok {
		return nil
	}
	copied := *pm
	copied.ID = "pm-" + pm.IncidentID
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	m.byIncident[pm.IncidentID] = &copied
	return nil
}

func (m *mockRepository) GetByIncidentID(_ context.Context, incidentID string) (*domain.Postmortem, error) {
	if pm, ok := m.byIncident[incidentID]; ok {
		copied := *pm
		return &copied, nil
	}
	return nil, ErrPostmortemNotFound
}

func (m *mockRepository) Update(_ context.Context, pm *domain.Postmortem) error {
	if _, ok := m.byIncident[pm.IncidentID]; !ok {
		return ErrPostmortemNotFound
	}
	copied := *pm
	m.byIncident[pm.IncidentID] = &copied
	return nil
}

// mockIncidents implements IncidentSource for testing.
type mockIncidents struct {
	incident *domain.Incident
}

func (m *mockIncidents) Get(_ context.Context, ownerID, id string) (*domain.Incident, error) {
	if m.incident != nil && m.incident.ID == id && m.incident.OwnerID == ownerID {
		copied := *m.incident
		return &copied, nil
	}
	return nil, incidents.ErrIncidentNotFound
}

// mockTimeline implements TimelineSource for testing.
type mockTimeline struct {
	entries []domain.TimelineEntry
}

func (m *mockTimeline) ListForIncident(_ context.Context, _ string) ([]domain.TimelineEntry, error) {
	return m.entries, nil
}

func resolvedIncident() *domain.Incident {
	started := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Minute)
	return &domain.Incident{
		ID:        "inc-1",
		OwnerID:   "owner-1",
		Title:     "Checkout is down",
		Severity:  domain.IncidentSeveritySev2,
		Status:    domain.IncidentStatusResolved,
		StartedAt: started,
		EndedAt:   &ended,
	}
}

func TestGetOrSynthesize_MaterializesOnceForResolved(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	tl := &mockTimeline{entries: []domain.TimelineEntry{
		{EntryType: domain.EntryTypeObservation, OccurredAt: time.Now(), Body: "error rate spiked"},
	}}
	service := NewService(repo, &mockIncidents{incident: resolvedIncident()}, tl)

	// Act
	first, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")
	require.NoError(t, err)
	second, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")
	require.NoError(t, err)

	// Assert: one insert, byte-identical reads
	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, first.Impact, second.Impact)
	assert.Equal(t, first.Detection, second.Detection)
	assert.Contains(t, first.Detection, "error rate spiked")
}

func TestGetOrSynthesize_NotResolvedReturnsNotFound(t *testing.T) {
	// Arrange
	inc := resolvedIncident()
	inc.Status = domain.IncidentStatusInvestigating
	inc.EndedAt = nil
	service := NewService(newMockRepository(), &mockIncidents{incident: inc}, &mockTimeline{})

	// Act
	pm, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")

	// Assert
	assert.Nil(t, pm)
	assert.ErrorIs(t, err, ErrPostmortemNotFound)
}

func TestGetOrSynthesize_UnknownIncident(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository(), &mockIncidents{}, &mockTimeline{})

	// Act
	pm, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-missing")

	// Assert
	assert.Nil(t, pm)
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
}

func TestGetOrSynthesize_LaterEntriesDoNotRederive(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	tl := &mockTimeline{}
	service := NewService(repo, &mockIncidents{incident: resolvedIncident()}, tl)

	first, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")
	require.NoError(t, err)

	// Act: a new observation lands after materialization
	tl.entries = append(tl.entries, domain.TimelineEntry{
		EntryType: domain.EntryTypeObservation, OccurredAt: time.Now(), Body: "late observation",
	})
	second, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, first.Detection, second.Detection)
	assert.NotContains(t, second.Detection, "late observation")
}

func TestUpdate_MaterializesEvenWhenNotResolved(t *testing.T) {
	// Arrange: drafting may begin before resolution
	inc := resolvedIncident()
	inc.Status = domain.IncidentStatusInvestigating
	inc.EndedAt = nil
	repo := newMockRepository()
	service := NewService(repo, &mockIncidents{incident: inc}, &mockTimeline{})

	impact := "We lost 3% of checkouts for 45 minutes."

	// Act
	pm, err := service.Update(context.Background(), "owner-1", "inc-1", UpdateInput{Impact: &impact})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, impact, pm.Impact)
	assert.Equal(t, 1, repo.creates)
	// The other sections keep their synthesized content.
	assert.Contains(t, pm.ActionItems, "## Action Items")
}

func TestUpdate_PatchesOnlySuppliedSections(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockIncidents{incident: resolvedIncident()}, &mockTimeline{})
	original, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")
	require.NoError(t, err)

	rootCause := "The deploy pipeline skipped canary analysis."

	// Act
	patched, err := service.Update(context.Background(), "owner-1", "inc-1", UpdateInput{RootCause: &rootCause})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, rootCause, patched.RootCause)
	assert.Equal(t, original.Impact, patched.Impact)
	assert.Equal(t, original.Resolution, patched.Resolution)
}

func TestUpdate_SurvivesLaterReads(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	tl := &mockTimeline{}
	service := NewService(repo, &mockIncidents{incident: resolvedIncident()}, tl)
	detection := "Paged by the synthetic checkout probe."
	_, err := service.Update(context.Background(), "owner-1", "inc-1", UpdateInput{Detection: &detection})
	require.NoError(t, err)

	// Act: append entries, then read again
	tl.entries = append(tl.entries, domain.TimelineEntry{
		EntryType: domain.EntryTypeObservation, OccurredAt: time.Now(), Body: "new data",
	})
	pm, err := service.GetOrSynthesize(context.Background(), "owner-1", "inc-1")

	// Assert: hand edits are never clobbered by re-synthesis
	require.NoError(t, err)
	assert.Equal(t, detection, pm.Detection)
}
