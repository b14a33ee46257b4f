package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mawadda-service/internal/models"
	"mawadda-service/internal/observability"
	"mawadda-service/internal/services"
	"mawadda-service/internal/telemetry"
	"mawadda-service/internal/ws"
)

// ConversationHandler manages conversation endpoints.
type ConversationHandler struct {
	conversations *services.ConversationService
	hub           *ws.Hub
	audit         *telemetry.AuditEmitter
}

func NewConversationHandler(conversations *services.ConversationService, hub *ws.Hub, audit *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, hub: hub, audit: audit}
}

// Start creates or returns the conversation with another user.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	result, err := h.conversations.Create(c.Request.Context(), userID, req.ProfileID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// List returns the caller's conversations, most recently active first.
func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	conversations, err := h.conversations.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// Get returns a single conversation.
func (h *ConversationHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	conv, err := h.conversations.Get(c.Request.Context(), c.Param("conversation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetMessages returns the conversation log in chronological order.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("userID")
	msgs, err := h.conversations.Messages(c.Request.Context(), c.Param("conversation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage stores a message and broadcasts it to websocket subscribers.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")
	msg, err := h.conversations.SendMessage(c.Request.Context(), conversationID, userID, req.Text)
	if err != nil {
		observability.IncMessageSent("rejected")
		respondError(c, err)
		return
	}

	observability.IncMessageSent("accepted")
	h.hub.BroadcastMessage(conversationID, msg)
	c.JSON(http.StatusCreated, msg)
}

// Accept activates the conversation on behalf of the caller.
func (h *ConversationHandler) Accept(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")
	if err := h.conversations.Accept(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastStatus(conversationID, models.ConversationActive)
	h.emitAudit(c, "INFO", "conversation accepted")
	c.Status(http.StatusNoContent)
}

// Decline terminally declines the conversation.
func (h *ConversationHandler) Decline(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")
	if err := h.conversations.Decline(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastStatus(conversationID, models.ConversationDeclined)
	h.emitAudit(c, "INFO", "conversation declined")
	c.Status(http.StatusNoContent)
}

// MarkRead clears the caller's unread counter for the conversation.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.conversations.MarkRead(c.Request.Context(), c.Param("conversation_id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckLimit reports whether the caller can send and how many sends remain.
func (h *ConversationHandler) CheckLimit(c *gin.Context) {
	userID := c.GetString("userID")
	check, err := h.conversations.CheckMessageLimit(c.Request.Context(), c.Param("conversation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

func (h *ConversationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
