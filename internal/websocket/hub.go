// Package websocket pushes sync lifecycle events to connected dashboard
// sessions so the UI can show run progress without polling.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/nexfone/invtrack/internal/models"
)

// Hub maintains the set of active dashboard sessions and broadcasts
// sync events to them
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🖥️  Dashboard session connected (%d total)", h.count())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Dashboard session disconnected (%d total)", h.count())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop rather than block
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// syncEvent is the wire shape of a sync lifecycle broadcast
type syncEvent struct {
	Type string          `json:"type"`
	Run  *models.SyncRun `json:"run"`
}

// NotifySync implements recon.Notifier: broadcast a sync lifecycle event
// to every connected session
func (h *Hub) NotifySync(event string, run *models.SyncRun) {
	msg, err := json.Marshal(syncEvent{Type: event, Run: run})
	if err != nil {
		log.Printf("Error marshaling sync event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// Hub loop backed up; sync must never block on UI delivery
	}
}
