package query

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://queryservice.local"

func remoteFor(t *testing.T) *RemoteService {
	t.Helper()
	rs := NewRemoteService(baseURL, "region1", testLogger())
	httpmock.ActivateNonDefault(rs.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return rs
}

func TestRemoteRegionSnapshot(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/flights/list_region_snapshot/region1",
		httpmock.NewStringResponder(http.StatusOK, `{
			"timestamp": 1700000000,
			"flights": [{"icao24": "ABC123", "callsign": "UAL321", "anomaly_label": "low speed at high altitude"}]
		}`))

	snap, err := rs.RegionSnapshot("")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), snap.Timestamp)
	require.Len(t, snap.Flights, 1)
	require.NotNil(t, snap.Flights[0].AnomalyLabel)
	assert.Equal(t, "low speed at high altitude", *snap.Flights[0].AnomalyLabel)
}

func TestRemoteRegionSnapshotTransportFailure(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/flights/list_region_snapshot/region1",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := rs.RegionSnapshot("region1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestRemoteRegionSnapshotServerError(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/flights/list_region_snapshot/region1",
		httpmock.NewStringResponder(http.StatusInternalServerError, `boom`))

	_, err := rs.RegionSnapshot("region1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestRemoteFlightByIdentifier(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/flights/get_by_callsign/UAL321",
		httpmock.NewStringResponder(http.StatusOK, `{"icao24": "ABC123", "callsign": "UAL321"}`))

	rec, err := rs.FlightByIdentifier("UAL321")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", rec.ICAO24)
}

func TestRemoteFlightByIdentifierNotFound(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/flights/get_by_callsign/GHOST9",
		httpmock.NewStringResponder(http.StatusNotFound, `{"detail": "Flight GHOST9 not found in latest snapshot."}`))

	_, err := rs.FlightByIdentifier("GHOST9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))
	assert.Contains(t, err.Error(), "GHOST9")
}

func TestRemoteActiveAlerts(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/alerts/list_active",
		httpmock.NewStringResponder(http.StatusOK, `{"alerts": [
			{"callsign": "UAL321", "icao24": "ABC123", "anomaly_label": "low speed at high altitude", "details": "Alt: 4000m, Speed: 30m/s, VRate: 2m/s"}
		]}`))

	alerts, err := rs.ActiveAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "UAL321", alerts[0].Callsign)
}

func TestRemoteActiveAlertsNullBody(t *testing.T) {
	rs := remoteFor(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/alerts/list_active",
		httpmock.NewStringResponder(http.StatusOK, `{"alerts": null}`))

	alerts, err := rs.ActiveAlerts()
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
