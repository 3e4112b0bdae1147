package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbz/skywatch/internal/agents"
	"github.com/curbz/skywatch/internal/anomaly"
	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/internal/query"
)

type fakeAPI struct {
	snap    *model.RegionSnapshot
	flights map[string]*model.FlightRecord
	alerts  []model.AlertRecord
}

func (f *fakeAPI) RegionSnapshot(region string) (*model.RegionSnapshot, error) {
	return f.snap, nil
}

func (f *fakeAPI) FlightByIdentifier(ident string) (*model.FlightRecord, error) {
	if rec, ok := f.flights[ident]; ok {
		return rec, nil
	}
	return nil, &query.NotFoundError{Ident: ident}
}

func (f *fakeAPI) ActiveAlerts() ([]model.AlertRecord, error) {
	return f.alerts, nil
}

type fakeGen struct {
	response string
}

func (g *fakeGen) Generate(prompt string, maxTokens int) (string, error) {
	return g.response, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func testServer() (*Server, *fakeAPI) {
	label := anomaly.LabelLowSpeedHighAlt
	rec := &model.FlightRecord{
		ICAO24:       "ABC123",
		Callsign:     "UAL321",
		GeoAltitude:  model.Float(4000),
		Velocity:     model.Float(30),
		VerticalRate: model.Float(2),
		AnomalyLabel: &label,
	}
	api := &fakeAPI{
		snap: &model.RegionSnapshot{
			Timestamp: 1700000000,
			Flights:   []model.FlightRecord{*rec},
		},
		flights: map[string]*model.FlightRecord{"UAL321": rec},
		alerts: []model.AlertRecord{
			{Callsign: "UAL321", ICAO24: "ABC123", AnomalyLabel: label, Details: "Alt: 4000m, Speed: 30m/s, VRate: 2m/s"},
		},
	}

	gen := &fakeGen{response: "analysis text"}
	ops := agents.NewOpsAnalyst(api, gen, 0, testLogger())
	traveler := agents.NewTravelerSupport(api, gen, ops, testLogger())
	return New(api, ops, traveler, "region1", testLogger()), api
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestListRegionSnapshotRoute(t *testing.T) {
	s, _ := testServer()
	rec := doRequest(t, s, http.MethodGet, "/flights/list_region_snapshot/region1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.RegionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1700000000), snap.Timestamp)
	require.Len(t, snap.Flights, 1)
	require.NotNil(t, snap.Flights[0].AnomalyLabel)
	assert.Equal(t, anomaly.LabelLowSpeedHighAlt, *snap.Flights[0].AnomalyLabel)
}

func TestGetByIdentifierRoute(t *testing.T) {
	s, _ := testServer()

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/flights/get_by_callsign/UAL321", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var fl model.FlightRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fl))
		assert.Equal(t, "ABC123", fl.ICAO24)
	})

	t.Run("not found includes the identifier", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/flights/get_by_callsign/GHOST9", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "GHOST9")
	})
}

func TestListActiveAlertsRoute(t *testing.T) {
	s, _ := testServer()
	rec := doRequest(t, s, http.MethodGet, "/alerts/list_active", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Alerts []model.AlertRecord `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "UAL321", resp.Alerts[0].Callsign)
}

func TestHealthRoute(t *testing.T) {
	s, _ := testServer()
	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestOpsAnalyzeRoute(t *testing.T) {
	s, _ := testServer()
	rec := doRequest(t, s, http.MethodPost, "/api/ops/analyze", `{"region": "region1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success          bool   `json:"success"`
		Region           string `json:"region"`
		TotalFlights     int    `json:"total_flights"`
		AnomalousFlights int    `json:"anomalous_flights"`
		Analysis         string `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "region1", resp.Region)
	assert.Equal(t, 1, resp.TotalFlights)
	assert.Equal(t, 1, resp.AnomalousFlights)
	assert.Equal(t, "analysis text", resp.Analysis)
}

func TestTravelerTrackRoute(t *testing.T) {
	s, _ := testServer()

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/traveler/track", `{"flight_id": "UAL321"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "analysis text")
		assert.Contains(t, rec.Body.String(), "monitor your flight status")
	})

	t.Run("missing id", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/traveler/track", `{"flight_id": "  "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown flight", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/traveler/track", `{"flight_id": "GHOST9"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTravelerAskRoute(t *testing.T) {
	s, _ := testServer()

	t.Run("answers", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/traveler/ask",
			`{"flight_id": "UAL321", "question": "what is my altitude?"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "analysis text")
	})

	t.Run("requires both fields", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/traveler/ask", `{"flight_id": "UAL321"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUnknownEndpoint(t *testing.T) {
	s, _ := testServer()
	rec := doRequest(t, s, http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Endpoint not found")
}

func TestEventsStreamBroadcast(t *testing.T) {
	s, _ := testServer()
	go s.hub.run()

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// give the handler a beat to register with the hub
	time.Sleep(50 * time.Millisecond)
	s.hub.broadcast <- []byte(`{"alerts": []}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"alerts": []}`, string(msg))
}
