package timeline

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	entries []domain.TimelineEntry
	nextID  int
}

func (m *mockRepository) Append(_ context.Context, entry *domain.TimelineEntry) error {
	m.nextID++
	entry.ID = fmt.Sprintf("entry-%d", m.nextID)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockRepository) ListForIncident(_ context.Context, incidentID string) ([]domain.TimelineEntry, error) {
	out := make([]domain.TimelineEntry, 0)
	for _, e := range m.entries {
		if e.IncidentID == incidentID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// mockIncidents implements IncidentChecker for testing.
type mockIncidents struct {
	known map[string]string // incident id -> owner id
}

func (m *mockIncidents) Get(_ context.Context, ownerID, id string) (*domain.Incident, error) {
	if owner, ok := m.known[id]; ok && owner == ownerID {
		return &domain.Incident{ID: id, OwnerID: ownerID}, nil
	}
	return nil, incidents.ErrIncidentNotFound
}

func newTestService() (*Service, *mockRepository) {
	repo := &mockRepository{}
	checker := &mockIncidents{known: map[string]string{"inc-1": "owner-1"}}
	return NewService(repo, checker), repo
}

func TestAppend_AssignsOccurredAtServerSide(t *testing.T) {
	// Arrange
	service, _ := newTestService()
	before := time.Now().Add(-time.Second)

	// Act
	entry, err := service.Append(context.Background(), "owner-1", "inc-1", AppendInput{
		EntryType: domain.EntryTypeNote,
		Body:      "first responder paged",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, entry.OccurredAt.After(before))
	assert.Equal(t, "first responder paged", entry.Body)
}

func TestAppend_InvalidEntryType(t *testing.T) {
	// Arrange
	service, _ := newTestService()

	// Act
	entry, err := service.Append(context.Background(), "owner-1", "inc-1", AppendInput{
		EntryType: "comment",
		Body:      "text",
	})

	// Assert
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrInvalidEntryType)
}

func TestAppend_EmptyBody(t *testing.T) {
	// Arrange
	service, _ := newTestService()

	// Act
	entry, err := service.Append(context.Background(), "owner-1", "inc-1", AppendInput{
		EntryType: domain.EntryTypeNote,
		Body:      "   ",
	})

	// Assert
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestAppend_UnknownIncident(t *testing.T) {
	// Arrange
	service, _ := newTestService()

	// Act
	entry, err := service.Append(context.Background(), "owner-1", "inc-missing", AppendInput{
		EntryType: domain.EntryTypeAction,
		Body:      "restarted the pod",
	})

	// Assert
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
}

func TestAppend_NotOwnedIncident(t *testing.T) {
	// Arrange
	service, _ := newTestService()

	// Act: same NotFound as a missing incident
	entry, err := service.Append(context.Background(), "owner-2", "inc-1", AppendInput{
		EntryType: domain.EntryTypeAction,
		Body:      "restarted the pod",
	})

	// Assert
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
}

func TestListFor_ChronologicalOrder(t *testing.T) {
	// Arrange: seed entries out of order, with a shared timestamp to
	// exercise the created_at tiebreak
	service, repo := newTestService()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	repo.entries = []domain.TimelineEntry{
		{ID: "e3", IncidentID: "inc-1", EntryType: domain.EntryTypeNote, OccurredAt: base.Add(2 * time.Minute), CreatedAt: base.Add(2 * time.Minute)},
		{ID: "e1", IncidentID: "inc-1", EntryType: domain.EntryTypeNote, OccurredAt: base, CreatedAt: base},
		{ID: "e2", IncidentID: "inc-1", EntryType: domain.EntryTypeNote, OccurredAt: base, CreatedAt: base.Add(time.Second)},
	}

	// Act
	entries, err := service.ListFor(context.Background(), "owner-1", "inc-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, "e3", entries[2].ID)
}

func TestAppend_NEntriesYieldNEntries(t *testing.T) {
	// Arrange
	service, _ := newTestService()

	// Act
	for i := 0; i < 5; i++ {
		_, err := service.Append(context.Background(), "owner-1", "inc-1", AppendInput{
			EntryType: domain.EntryTypeObservation,
			Body:      fmt.Sprintf("observation %d", i),
		})
		require.NoError(t, err)
	}

	// Assert
	entries, err := service.ListFor(context.Background(), "owner-1", "inc-1")
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
