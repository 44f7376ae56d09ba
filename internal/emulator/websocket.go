package emulator

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for emulator
	},
}

// HandleWebSocket streams newly published messages to the connection
func (e *Emulator) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.log.Error("WebSocket upgrade error: %v", err)
		return
	}

	e.registerWebSocketClient(conn)
	defer e.unregisterWebSocketClient(conn)

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (e *Emulator) registerWebSocketClient(conn *websocket.Conn) {
	e.wsClientsMux.Lock()
	e.wsClients[conn] = true
	e.wsClientsMux.Unlock()
}

func (e *Emulator) unregisterWebSocketClient(conn *websocket.Conn) {
	e.wsClientsMux.Lock()
	delete(e.wsClients, conn)
	e.wsClientsMux.Unlock()
	conn.Close()
}

// WebSocketClients reports the number of connected feed clients
func (e *Emulator) WebSocketClients() int {
	e.wsClientsMux.Lock()
	defer e.wsClientsMux.Unlock()
	return len(e.wsClients)
}

// handleBroadcast writes queued events to every client until Close
func (e *Emulator) handleBroadcast() {
	for message := range e.broadcast {
		e.wsClientsMux.Lock()
		for client := range e.wsClients {
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				e.log.Error("WebSocket error: %v", err)
				client.Close()
				delete(e.wsClients, client)
			}
		}
		e.wsClientsMux.Unlock()
	}

	e.wsClientsMux.Lock()
	for client := range e.wsClients {
		client.Close()
		delete(e.wsClients, client)
	}
	e.wsClientsMux.Unlock()
}
