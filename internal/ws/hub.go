package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/observability"
)

const roomKind = "conversation"

var errConnNotRegistered = errors.New("websocket connection not registered")

// Hub maintains active websocket rooms, one per conversation.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	writeMu  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
		writeMu:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(conversationID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[conversationID][conn] = true
	if _, ok := h.connInfo[conversationID]; !ok {
		h.connInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[conversationID][conn] = info
	if _, ok := h.writeMu[conn]; !ok {
		h.writeMu[conn] = &sync.Mutex{}
	}
}

// RemoveClient removes a websocket connection from a conversation room.
func (h *Hub) RemoveClient(conversationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	if infos, ok := h.connInfo[conversationID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, conversationID)
		}
	}
	delete(h.writeMu, conn)
}

// Send writes one event to a single registered connection. gorilla/websocket
// allows only one concurrent writer per connection, so every frame, whether
// from a room broadcast or a per-connection feed, goes through the
// connection's write lock.
func (h *Hub) Send(conn *websocket.Conn, event models.ConversationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.write(conn, payload)
}

func (h *Hub) write(conn *websocket.Conn, payload []byte) error {
	h.mu.RLock()
	lock := h.writeMu[conn]
	h.mu.RUnlock()
	if lock == nil {
		return errConnNotRegistered
	}
	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// BroadcastMessage sends a new message to all clients in a conversation.
func (h *Hub) BroadcastMessage(conversationID string, msg models.Message) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "message", Message: &msg})
}

// BroadcastStatus notifies clients of a lifecycle change (accepted,
// declined, blocked).
func (h *Hub) BroadcastStatus(conversationID string, status models.ConversationStatus) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "status", Status: string(status)})
}

func (h *Hub) broadcast(conversationID string, event models.ConversationEvent) {
	h.mu.RLock()
	conns := h.rooms[conversationID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := h.write(conn, payload); err != nil {
			logger.Warn("websocket write error", "conversationId", conversationID, "err", err)
			conn.Close()
			h.RemoveClient(conversationID, conn)
			h.publishWSError(conversationID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(conversationID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(conversationID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":            roomKind,
			"conversation_id": conversationID,
			"event":           "ws_error",
			"conn_id":         info.ConnID,
			"duration_ms":     time.Since(info.ConnectedAt).Milliseconds(),
			"reason":          err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(roomKind, "ws_error")
}

func (h *Hub) getConnInfo(conversationID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[conversationID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
