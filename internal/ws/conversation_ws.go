package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"mawadda-service/internal/middleware"
	"mawadda-service/internal/models"
	"mawadda-service/internal/observability"
	"mawadda-service/internal/services"
)

// ConversationWebSocketHandler handles conversation websocket connections.
// Each client receives broadcast events from the hub plus a live feed of the
// message log sourced from the store listener.
type ConversationWebSocketHandler struct {
	hub           *Hub
	conversations *services.ConversationService
	jwtSecret     string
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, conversations *services.ConversationService, jwtSecret string) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, conversations: conversations, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("mawadda-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			header = "Bearer " + token
		}
	}
	userID, err := h.validateToken(header)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// The listener outlives the handshake request; it stops when the
	// socket closes. Membership is verified here too.
	listenCtx, stopListen := context.WithCancel(context.Background())
	feed, err := h.conversations.ListenMessages(listenCtx, conversationID, userID)
	if err != nil {
		stopListen()
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		stopListen()
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conversationID, conn, info)

	observability.IncWSActive(roomKind)
	observability.IncWSEvent(roomKind, "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(conversationID, "ws_connect", info, 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// Forward store snapshots to this connection. Writes go through the
	// hub so they serialize with room broadcasts on the same conn.
	go func() {
		for msgs := range feed {
			event := models.ConversationEvent{Type: "snapshot", Messages: msgs}
			if err := h.hub.Send(conn, event); err != nil {
				return
			}
		}
	}()

	// Keep connection alive and clean on close
	go func() {
		var closeReason string
		defer func() {
			stopListen()
			h.hub.RemoveClient(conversationID, conn)
			observability.DecWSActive(roomKind)
			observability.IncWSEvent(roomKind, "ws_disconnect")
			_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(conversationID, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(roomKind, "ws_error")
					_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(conversationID, "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
					}, observability.BuildHeaders(requestID, traceID))
				}
				return
			}
		}
	}()
}

func (h *ConversationWebSocketHandler) validateToken(header string) (string, error) {
	token, err := middleware.TokenFromHeader(header)
	if err != nil {
		return "", err
	}
	claims, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func wsEventPayload(conversationID, event string, info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":            roomKind,
			"conversation_id": conversationID,
			"event":           event,
			"conn_id":         info.ConnID,
			"duration_ms":     durationMS,
			"reason":          reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
