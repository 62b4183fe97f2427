package server

import (
	"encoding/json"
	"net/http"

	"monitor-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				client.closeSend()
			}
			s.clientsMu.Unlock()
			return

		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()
			s.Logger.Info("Client %s connected", client.id)

			// Send initial state on connect
			client.trySend(s.snapshotMessage("INITIAL", nil))

		case client := <-s.unregister:
			s.removeClient(client)

		case message := <-s.broadcast:
			s.clientsMu.RLock()
			clients := make([]*Client, 0, len(s.clients))
			for client := range s.clients {
				clients = append(clients, client)
			}
			s.clientsMu.RUnlock()

			for _, client := range clients {
				filtered, ok := client.filter(message)
				if !ok {
					continue
				}
				if !client.trySend(filtered) {
					// Client too slow, disconnect to prevent Hub blocking
					s.Logger.Warning("Client %s too slow, dropping", client.id)
					s.removeClient(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) removeClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		client.closeSend()
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a message for every client. It never blocks: when the
// queue is full the message is dropped.
func (s *DashboardServer) Broadcast(msg models.MDashboardMessage) {
	select {
	case s.broadcast <- msg:
	case <-s.done:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s message", msg.Type)
	}
}

// -----------------------------------------------------------------------------

// BroadcastUpdate wraps a store update into an UPDATE message
func (s *DashboardServer) BroadcastUpdate(update models.MRealtimeUpdate) {
	s.Broadcast(models.MDashboardMessage{
		Type:         "UPDATE",
		Values:       update.Values,
		Timestamp:    update.Timestamp,
		Reconnecting: s.reconnecting(),
	})
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func (s *DashboardServer) snapshotMessage(msgType string, keys map[string]struct{}) models.MDashboardMessage {
	values := s.deps.Store.Snapshot()
	if len(keys) > 0 {
		values = filterValues(values, keys)
	}
	return models.MDashboardMessage{
		Type:         msgType,
		Values:       values,
		Timestamp:    s.latestUpdate(),
		Reconnecting: s.reconnecting(),
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) reconnecting() bool {
	if s.deps.Channel == nil {
		return false
	}
	return s.deps.Channel.GetReconnectFlag()
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) latestUpdate() int64 {
	t := s.deps.Store.UpdatedAt()
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MDashboardMessage, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command and answers with a filtered
// snapshot. Unparseable commands disconnect the client.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	keys := client.setKeys(cmd.Keys)
	client.trySend(s.snapshotMessage("INITIAL", keys))
}
