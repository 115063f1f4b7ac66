//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/opsledger/opsledger/internal/testutil"
	"github.com/stretchr/testify/require"
)

// createTestService creates a service and returns its ID.
func createTestService(t *testing.T, client *testutil.Client, name string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/services", map[string]interface{}{
		"name": name,
		"slug": testutil.RandomSlug("svc"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)
	return result.Data.ID
}

// createTestIncident creates an incident against the given service and
// returns its ID. The incident starts in the open status.
func createTestIncident(t *testing.T, client *testutil.Client, serviceID, title string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"service_id": serviceID,
		"title":      title,
		"severity":   "sev2",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)
	return result.Data.ID
}

// transitionIncident moves an incident to the target status and asserts success.
func transitionIncident(t *testing.T, client *testutil.Client, incidentID, status string) {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/transition", map[string]string{
		"status": status,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

// resolveIncident walks an open incident through investigating to resolved.
func resolveIncident(t *testing.T, client *testutil.Client, incidentID string) {
	t.Helper()
	transitionIncident(t, client, incidentID, "investigating")
	transitionIncident(t, client, incidentID, "resolved")
}

// appendEntry appends a timeline entry to an incident.
func appendEntry(t *testing.T, client *testutil.Client, incidentID, entryType, body string) {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/timeline", map[string]string{
		"entry_type": entryType,
		"body":       body,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}
