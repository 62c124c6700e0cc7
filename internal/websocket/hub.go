// Package websocket pushes live sync status frames to connected UI
// clients, so the header indicator updates without polling.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of active clients and broadcasts status frames
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
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*Client]bool),
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
			log.Printf("📱 UI client connected (%d active)", h.count())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("📴 UI client disconnected (%d active)", h.count())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop the frame
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a JSON message to every connected client. Never blocks;
// safe from any goroutine.
func (h *Hub) Broadcast(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling broadcast: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
