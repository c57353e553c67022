package utility

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub of open chat sockets: Map[ConnectionID] -> Connection
var (
	ChatClients   = make(map[string]*websocket.Conn)
	ChatClientsMu sync.Mutex
	Upgrader      = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// The HTTP API is open to any origin, so is the socket.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// RegisterChatClient records a newly upgraded chat socket.
func RegisterChatClient(connID string, conn *websocket.Conn) {
	ChatClientsMu.Lock()
	defer ChatClientsMu.Unlock()
	ChatClients[connID] = conn
	log.Info().Str("conn_id", connID).Msg("Chat WebSocket connected")
}

// UnregisterChatClient forgets a socket once its handler returns.
func UnregisterChatClient(connID string) {
	ChatClientsMu.Lock()
	defer ChatClientsMu.Unlock()
	if _, ok := ChatClients[connID]; ok {
		delete(ChatClients, connID)
		log.Info().Str("conn_id", connID).Msg("Chat WebSocket disconnected")
	}
}

// ActiveChatClients reports how many chat sockets are open.
func ActiveChatClients() int {
	ChatClientsMu.Lock()
	defer ChatClientsMu.Unlock()
	return len(ChatClients)
}

// CloseChatClients sends a going-away close frame to every open chat socket
// and drops it from the hub. http.Server.Shutdown leaves hijacked connections
// alone, so this runs after the HTTP drain.
func CloseChatClients() int {
	ChatClientsMu.Lock()
	defer ChatClientsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(time.Second)
	closed := 0
	for connID, conn := range ChatClients {
		if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			log.Warn().Err(err).Str("conn_id", connID).Msg("Failed to send close frame")
		}
		conn.Close()
		delete(ChatClients, connID)
		closed++
	}
	return closed
}
