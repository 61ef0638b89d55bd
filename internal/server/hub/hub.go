// Package hub fans the current alert record out to connected WebSocket
// viewers. Every successful publish or disable is broadcast, so public
// pages can update without waiting for their next poll.
package hub

import (
	"log"
	"sync"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// Hub maintains the set of active clients and broadcasts records to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast receives the record to push to all clients.
	Broadcast chan model.AlertRecord

	Register   chan *Client
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan model.AlertRecord),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's event loop; callers run it in a goroutine.
func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("Viewer connected: %s (total: %d)", client.Conn.RemoteAddr(), len(h.clients))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("Viewer disconnected: %s (total: %d)", client.Conn.RemoteAddr(), len(h.clients))
			}
			h.mu.Unlock()

		case rec := <-h.Broadcast:
			h.mu.RLock()
			log.Printf("Broadcasting %s to %d viewer(s)", rec.String(), len(h.clients))
			for client := range h.clients {
				// Non-blocking send: a viewer with a full buffer is
				// assumed slow or gone and gets unregistered.
				select {
				case client.Send <- rec:
				default:
					log.Printf("Viewer send buffer full, unregistering: %s", client.Conn.RemoteAddr())
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}
