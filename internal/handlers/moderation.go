package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mawadda-service/internal/models"
	"mawadda-service/internal/services"
)

// ModerationHandler exposes admin moderation endpoints.
type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// Apply executes a moderation action against a user.
func (h *ModerationHandler) Apply(c *gin.Context) {
	var req struct {
		UserID          string `json:"user_id" binding:"required"`
		Action          string `json:"action" binding:"required"`
		Reason          string `json:"reason" binding:"required"`
		DurationSeconds int64  `json:"duration_seconds"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moderatorID := c.GetString("userID")
	id, err := h.moderation.Apply(c.Request.Context(), models.ModerationAction{
		UserID:      req.UserID,
		ModeratorID: moderatorID,
		ActionType:  models.ModerationActionType(req.Action),
		Reason:      req.Reason,
		Duration:    time.Duration(req.DurationSeconds) * time.Second,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"action_id": id})
}

// History returns the moderation actions taken against a user.
func (h *ModerationHandler) History(c *gin.Context) {
	actions, err := h.moderation.History(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// ReinstateExpired reactivates suspended accounts past their window.
func (h *ModerationHandler) ReinstateExpired(c *gin.Context) {
	count, err := h.moderation.ReinstateExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reinstated": count})
}
