package server

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/query"
)

// client is a single WebSocket subscriber to the alert stream.
type client struct {
	id   string
	send chan []byte
}

// hub maintains the set of connected alert-stream clients and fans one
// message out to all of them. A client whose buffer is full gets dropped
// rather than stalling the broadcast.
type hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	log        *logrus.Entry
}

func newHub(log *logrus.Logger) *hub {
	return &hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        log.WithField("component", "alert-hub"),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Infof("client registered: %s", c.id)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Infof("client unregistered: %s", c.id)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.log.Warnf("client %s send buffer full, dropping", c.id)
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// pollAlerts reloads the active-alert list on a tick and broadcasts it to
// the hub whenever it changes. Transport failures are logged and skipped;
// the poll loop never dies.
func (s *Server) pollAlerts(interval time.Duration) {
	var last []byte
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		alerts, err := s.api.ActiveAlerts()
		if err != nil {
			if query.IsTransport(err) {
				s.log.Warnf("alert poll transport failure: %v", err)
				continue
			}
			s.log.Warnf("alert poll failed: %v", err)
			continue
		}

		payload, err := json.Marshal(map[string]any{"alerts": alerts})
		if err != nil {
			s.log.Warnf("marshalling alert payload: %v", err)
			continue
		}
		if string(payload) == string(last) {
			continue
		}
		last = payload
		s.hub.broadcast <- payload
	}
}
