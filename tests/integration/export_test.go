//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/opsledger/opsledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_FullLifecycle(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Checkout")
	incidentID := createTestIncident(t, client, serviceID, "Checkout is down")

	appendEntry(t, client, incidentID, "observation", "error rate spiked to 40%")
	appendEntry(t, client, incidentID, "action", "rolled back release 42")
	resolveIncident(t, client, incidentID)

	// Materialize the postmortem so the export includes it
	resp, err := client.GET("/api/v1/incidents/" + incidentID + "/postmortem")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.GET("/api/v1/incidents/" + incidentID + "/export")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "checkout-is-down.md")

	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "# Incident Report: Checkout is down")
	assert.Contains(t, body, "| **Service** | Checkout |")
	assert.Contains(t, body, "## Timeline")
	assert.Contains(t, body, "error rate spiked to 40%")
	assert.Contains(t, body, "# Postmortem")
	assert.Contains(t, body, "Exported from OpsLedger on")
}

func TestExport_ActiveIncidentWithoutPostmortem(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Billing")
	incidentID := createTestIncident(t, client, serviceID, "Invoices delayed")

	resp, err := client.GET("/api/v1/incidents/" + incidentID + "/export")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "*No timeline entries recorded.*")
	assert.NotContains(t, body, "# Postmortem")
}

func TestExport_RedactsSecrets(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)
	serviceID := createTestService(t, client, "Deploys")
	incidentID := createTestIncident(t, client, serviceID, "Leaked credentials")

	appendEntry(t, client, incidentID, "note", "found api_key=abc123secret in the build log")

	resp, err := client.GET("/api/v1/incidents/" + incidentID + "/export")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "api_key=[REDACTED]")
	assert.NotContains(t, body, "abc123secret")
}

func TestExport_UnknownIncident(t *testing.T) {
	client := newTestClient(t)
	client.RegisterAndLogin(t)

	resp, err := client.GET("/api/v1/incidents/00000000-0000-0000-0000-000000000000/export")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
