//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/opsledger/opsledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidents_CreateOpensIncident(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Checkout")

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"service_id": serviceID,
		"title":      "Checkout is down",
		"severity":   "sev1",
		"summary":    "Card payments failing",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID        string     `json:"id"`
			Status    string     `json:"status"`
			Severity  string     `json:"severity"`
			StartedAt time.Time  `json:"started_at"`
			EndedAt   *time.Time `json:"ended_at"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &created)
	assert.Equal(t, "open", created.Data.Status)
	assert.Equal(t, "sev1", created.Data.Severity)
	assert.False(t, created.Data.StartedAt.IsZero())
	assert.Nil(t, created.Data.EndedAt)
}

func TestIncidents_CreateAttachesPublishedRunbook(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Search")

	resp, err := client.POST("/api/v1/runbooks", map[string]interface{}{
		"service_id": serviceID,
		"title":      "Search recovery",
		"status":     "published",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.POST("/api/v1/incidents", map[string]interface{}{
		"service_id": serviceID,
		"title":      "Search latency",
		"severity":   "sev3",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			RunbookID    *string `json:"runbook_id"`
			RunbookTitle *string `json:"runbook_title"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &created)
	require.NotNil(t, created.Data.RunbookTitle)
	assert.Equal(t, "Search recovery", *created.Data.RunbookTitle)
}

func TestIncidents_InvalidSeverityRejected(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Billing")

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"service_id": serviceID,
		"title":      "Invoices delayed",
		"severity":   "critical",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_ListFilters(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceA := createTestService(t, client, "Service A")
	serviceB := createTestService(t, client, "Service B")

	incidentA := createTestIncident(t, client, serviceA, "A down")
	createTestIncident(t, client, serviceB, "B down")
	transitionIncident(t, client, incidentA, "investigating")

	resp, err := client.GET("/api/v1/incidents?service_id=" + serviceA)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var byService struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &byService)
	require.Len(t, byService.Data, 1)
	assert.Equal(t, incidentA, byService.Data[0].ID)

	resp, err = client.GET("/api/v1/incidents?status=investigating")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var byStatus struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &byStatus)
	require.NotEmpty(t, byStatus.Data)
	for _, inc := range byStatus.Data {
		assert.Equal(t, "investigating", inc.Status)
	}
}

func TestIncidents_TransitionSetsEndedAt(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Payments")
	incidentID := createTestIncident(t, client, serviceID, "Payments slow")

	transitionIncident(t, client, incidentID, "investigating")

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/transition", map[string]string{
		"status": "resolved",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			PreviousStatus string     `json:"previous_status"`
			NewStatus      string     `json:"new_status"`
			EndedAt        *time.Time `json:"ended_at"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "investigating", result.Data.PreviousStatus)
	assert.Equal(t, "resolved", result.Data.NewStatus)
	require.NotNil(t, result.Data.EndedAt)

	// Reopening clears the end timestamp
	resp, err = client.POST("/api/v1/incidents/"+incidentID+"/transition", map[string]string{
		"status": "open",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.DecodeJSON(t, resp, &result)
	assert.Nil(t, result.Data.EndedAt)

	resp, err = client.GET("/api/v1/incidents/" + incidentID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var incident struct {
		Data struct {
			Status  string     `json:"status"`
			EndedAt *time.Time `json:"ended_at"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "open", incident.Data.Status)
	assert.Nil(t, incident.Data.EndedAt)
}

func TestIncidents_IllegalTransitionReturnsDetail(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Email")
	incidentID := createTestIncident(t, client, serviceID, "Mail backlog")

	// open -> mitigated skips the acknowledgement step
	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/transition", map[string]string{
		"status": "mitigated",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var result struct {
		Error struct {
			Message       string   `json:"message"`
			CurrentStatus string   `json:"current_status"`
			Requested     string   `json:"requested"`
			ValidNext     []string `json:"valid_next"`
		} `json:"error"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "open", result.Error.CurrentStatus)
	assert.Equal(t, "mitigated", result.Error.Requested)
	assert.Equal(t, []string{"investigating"}, result.Error.ValidNext)
}

func TestIncidents_SelfTransitionRejected(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "CDN")
	incidentID := createTestIncident(t, client, serviceID, "Cache misses")

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/transition", map[string]string{
		"status": "open",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_EndedAtPatchRejectedWhileOpen(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Billing")
	incidentID := createTestIncident(t, client, serviceID, "Invoices stuck")

	resp, err := client.PATCH("/api/v1/incidents/"+incidentID, map[string]interface{}{
		"ended_at": time.Now().UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_NotVisibleToOtherOwners(t *testing.T) {
	owner := newTestClient(t)
	owner.RegisterAndLogin(t)
	serviceID := createTestService(t, owner, "Internal")
	incidentID := createTestIncident(t, owner, serviceID, "Private incident")

	other := newTestClient(t)
	other.RegisterAndLogin(t)

	resp, err := other.GET("/api/v1/incidents/" + incidentID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
