package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mawadda-service/internal/observability"
	"mawadda-service/internal/services"
)

// RelationshipHandler serves like and block endpoints.
type RelationshipHandler struct {
	likes  *services.LikeService
	blocks *services.BlockService
}

func NewRelationshipHandler(likes *services.LikeService, blocks *services.BlockService) *RelationshipHandler {
	return &RelationshipHandler{likes: likes, blocks: blocks}
}

// Like records a like from the caller toward another profile.
func (h *RelationshipHandler) Like(c *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	result, err := h.likes.Like(c.Request.Context(), userID, req.ProfileID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.AlreadyLiked {
		observability.IncRelationshipEvent("like")
		if result.IsMutual {
			observability.IncRelationshipEvent("match")
		}
	}
	c.JSON(http.StatusOK, result)
}

// Unlike withdraws a previous like.
func (h *RelationshipHandler) Unlike(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.likes.Unlike(c.Request.Context(), userID, c.Param("profile_id")); err != nil {
		respondError(c, err)
		return
	}
	observability.IncRelationshipEvent("unlike")
	c.Status(http.StatusNoContent)
}

// WhoLikedMe lists incoming likes, most recent first.
func (h *RelationshipHandler) WhoLikedMe(c *gin.Context) {
	userID := c.GetString("userID")
	likes, err := h.likes.WhoLikedMe(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// LikeCount returns how many likes the caller has received.
func (h *RelationshipHandler) LikeCount(c *gin.Context) {
	userID := c.GetString("userID")
	count, err := h.likes.CountLikes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkLikesViewed marks the caller's incoming likes as seen.
func (h *RelationshipHandler) MarkLikesViewed(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.likes.MarkLikesViewed(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Block blocks another user and severs the existing relationship state.
func (h *RelationshipHandler) Block(c *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.blocks.Block(c.Request.Context(), userID, req.ProfileID, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	observability.IncRelationshipEvent("block")
	c.Status(http.StatusNoContent)
}

// Unblock removes a block the caller placed.
func (h *RelationshipHandler) Unblock(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.blocks.Unblock(c.Request.Context(), userID, c.Param("profile_id")); err != nil {
		respondError(c, err)
		return
	}
	observability.IncRelationshipEvent("unblock")
	c.Status(http.StatusNoContent)
}

// BlockedUsers lists the ids the caller has blocked.
func (h *RelationshipHandler) BlockedUsers(c *gin.Context) {
	userID := c.GetString("userID")
	blocked, err := h.blocks.BlockedUsers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}
