package dispatch

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

// Hub stores connected users (userId -> *websocket.Conn) for live
// notification delivery
type Hub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// HandleWebSocket upgrades the connection and registers it under the userId
// query parameter until the peer disconnects
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorf("WebSocket upgrade error: %v", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	h.mutex.Lock()
	h.clients[userID] = conn
	h.mutex.Unlock()
	zap.S().Debugf("User %s connected to /ws/notifications", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		h.mutex.Lock()
		delete(h.clients, userID)
		h.mutex.Unlock()
		zap.S().Debugf("User %s disconnected from /ws/notifications", userID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// Send pushes a payload to one connected user. Returns false when the user
// has no live connection.
func (h *Hub) Send(userID string, payload interface{}) bool {
	h.mutex.Lock()
	conn, exists := h.clients[userID]
	h.mutex.Unlock()

	if !exists {
		return false
	}
	err := conn.WriteJSON(map[string]interface{}{
		"event": "new_notification",
		"data":  payload,
	})
	if err != nil {
		zap.S().Errorf("Error sending notification to user %s: %v", userID, err)
		h.mutex.Lock()
		delete(h.clients, userID)
		h.mutex.Unlock()
		conn.Close()
		return false
	}
	return true
}

// Broadcast pushes a payload to every connected user
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conn := range h.clients {
		err := conn.WriteJSON(map[string]interface{}{
			"event": event,
			"data":  payload,
		})
		if err != nil {
			zap.S().Errorf("Error broadcasting to user %s: %v", userID, err)
			delete(h.clients, userID)
			conn.Close()
		}
	}
}
