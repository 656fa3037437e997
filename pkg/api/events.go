package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

// EventMessage is the envelope pushed to dashboard subscribers.
type EventMessage struct {
	Type    string      `json:"type"` // currently only "audit"
	Payload interface{} `json:"payload,omitempty"`
}

// EventsHub fans audit events out to connected dashboard sessions.
type EventsHub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[*websocket.Conn]struct{}
}

func NewEventsHub() *EventsHub {
	return &EventsHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: map[*websocket.Conn]struct{}{},
	}
}

// HandleWS upgrades and registers a subscriber. The token rides in the
// query string because browsers cannot set headers on WS dials.
func (h *EventsHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	if _, err := auth.ParseAccess(token); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("events ws upgrade failed: %v", err)
		return
	}
	h.mu.Lock()
	h.subs[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("events subscriber connected (%d active)", h.count())
	go h.readLoop(c)
}

// BroadcastAudit pushes one audit entry to every subscriber.
func (h *EventsHub) BroadcastAudit(e model.AuditEntry) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs))
	for c := range h.subs {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	msg := EventMessage{Type: "audit", Payload: e}
	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			h.drop(c)
		}
	}
}

func (h *EventsHub) readLoop(c *websocket.Conn) {
	defer h.drop(c)
	for {
		if _, _, err := c.NextReader(); err != nil {
			return
		}
	}
}

func (h *EventsHub) drop(c *websocket.Conn) {
	_ = c.Close()
	h.mu.Lock()
	delete(h.subs, c)
	h.mu.Unlock()
}

func (h *EventsHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
