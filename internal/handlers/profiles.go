package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mawadda-service/internal/services"
)

const defaultBatchLimit = 50

// ProfileHandler serves profile reads.
type ProfileHandler struct {
	people *services.PeopleService
}

func NewProfileHandler(people *services.PeopleService) *ProfileHandler {
	return &ProfileHandler{people: people}
}

// BatchProfiles resolves a list of profile ids into normalized profiles,
// skipping blocked, incomplete, and inactive accounts.
func (h *ProfileHandler) BatchProfiles(c *gin.Context) {
	var req struct {
		ProfileIDs []string `json:"profile_ids" binding:"required"`
		Limit      int      `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultBatchLimit
	}

	userID := c.GetString("userID")
	profiles, err := h.people.ProfilesForRequester(c.Request.Context(), userID, req.ProfileIDs, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetProfile returns one normalized profile by id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.people.ProfileByID(c.Request.Context(), c.Param("profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
