// Package live pushes order events to staff dashboards over websockets.
package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Keoroanthony/go-storefront/internal/events"
)

// Hub tracks connected staff clients and broadcasts every event it is
// notified of.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// NewHub accepts connections from the serving host and from the listed
// origins. "*" is ignored: the feed rides on the staff session cookie.
func NewHub(allowedOrigins ...string) *Hub {
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		origins: make(map[string]bool),
	}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin != "" && origin != "*" {
			h.origins[origin] = true
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return h.origins[strings.ToLower(u.Scheme+"://"+u.Host)]
}

func (h *Hub) Handler(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			break
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify writes the event to every client. Clients that fail the write are
// dropped.
func (h *Hub) Notify(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("live: dropping client: %v", err)
			client.Close()
			delete(h.clients, client)
		}
	}
	return nil
}
