// Package server is the HTTP front door: the three query-service routes,
// the browser-facing /api routes and a WebSocket alert stream. It is glue
// only - every decision lives in the query service and the analyst roles.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/agents"
	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/internal/query"
)

const alertPollInterval = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Server struct {
	api      query.API
	ops      *agents.OpsAnalyst
	traveler *agents.TravelerSupport
	region   string
	hub      *hub
	log      *logrus.Entry
}

func New(api query.API, ops *agents.OpsAnalyst, traveler *agents.TravelerSupport, region string, log *logrus.Logger) *Server {
	return &Server{
		api:      api,
		ops:      ops,
		traveler: traveler,
		region:   region,
		hub:      newHub(log),
		log:      log.WithField("component", "server"),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	// query service surface
	r.Get("/flights/list_region_snapshot/{region}", s.handleListRegionSnapshot)
	r.Get("/flights/get_by_callsign/{identifier}", s.handleGetByIdentifier)
	r.Get("/alerts/list_active", s.handleListActiveAlerts)

	// browser UI bridge
	r.Get("/api/health", s.handleHealth)
	r.Post("/api/ops/analyze", s.handleOpsAnalyze)
	r.Post("/api/traveler/track", s.handleTravelerTrack)
	r.Post("/api/traveler/ask", s.handleTravelerAsk)
	r.Get("/api/flights/list", s.handleFlightsList)
	r.Get("/api/events", s.handleEvents)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})

	return r
}

// ListenAndServe starts the alert stream plumbing and serves until the
// listener fails.
func (s *Server) ListenAndServe(addr string) error {
	go s.hub.run()
	go s.pollAlerts(alertPollInterval)

	s.log.Infof("listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // long-lived websocket upgrades share this server
		IdleTimeout:  30 * time.Minute,
	}
	return srv.ListenAndServe()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- query service routes ---

func (s *Server) handleListRegionSnapshot(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	snap, err := s.api.RegionSnapshot(region)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetByIdentifier(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "identifier")
	rec, err := s.api.FlightByIdentifier(ident)
	if err != nil {
		if query.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListActiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.api.ActiveAlerts()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.AlertRecord{"alerts": alerts})
}

// --- browser UI routes ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Backend is running"})
}

func (s *Server) handleOpsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Region string `json:"region"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Region == "" {
		req.Region = s.region
	}

	s.log.Infof("analyzing region %s", req.Region)
	report := s.ops.AnalyzeRegion(req.Region)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"region":            report.Region,
		"timestamp":         report.Timestamp,
		"total_flights":     report.TotalFlights,
		"anomalous_flights": report.AnomalousFlights,
		"analysis":          report.Analysis,
		"flights":           report.RawData.AllFlights,
		"alerts":            report.RawData.Alerts,
	})
}

func (s *Server) handleTravelerTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FlightID string `json:"flight_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.FlightID = strings.TrimSpace(req.FlightID)
	if req.FlightID == "" {
		writeError(w, http.StatusBadRequest, "Flight ID is required")
		return
	}

	s.log.Infof("tracking flight %s", req.FlightID)
	report := s.traveler.TrackFlight(req.FlightID)

	if report.RawData == nil && strings.Contains(strings.ToLower(report.Summary), "couldn't find") {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Flight %s not found", req.FlightID))
		return
	}

	issues := s.traveler.CheckIssues(req.FlightID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"flight_id": report.FlightID,
		"summary":   report.Summary,
		"issues":    issues,
		"raw_data":  report.RawData,
	})
}

func (s *Server) handleTravelerAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FlightID string `json:"flight_id"`
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.FlightID = strings.TrimSpace(req.FlightID)
	req.Question = strings.TrimSpace(req.Question)
	if req.FlightID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "Both flight_id and question are required")
		return
	}

	s.log.Infof("question about %s: %s", req.FlightID, req.Question)
	answer := s.traveler.AnswerQuestion(req.FlightID, req.Question)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"flight_id": req.FlightID,
		"question":  req.Question,
		"answer":    answer,
	})
}

func (s *Server) handleFlightsList(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = s.region
	}
	snap, err := s.api.RegionSnapshot(region)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "flights": snap.Flights})
}

// handleEvents upgrades to WebSocket and streams the active-alert list as
// it changes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{id: r.RemoteAddr, send: make(chan []byte, 256)}
	s.hub.register <- c
	defer func() { s.hub.unregister <- c }()

	for {
		select {
		case message, open := <-c.send:
			if !open {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Warnf("writing to client %s: %v", c.id, err)
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
