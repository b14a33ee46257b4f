package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mawadda-service/internal/services"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if val, ok := c.Get("userID"); ok {
		if id, ok := val.(string); ok && id != "" {
			return &id
		}
	}
	return nil
}

// statusForError maps service sentinel errors onto HTTP statuses. Unknown
// errors stay 500 so callers never see internals.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSelfAction),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidReportStatus),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrDurationRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConversationClosed),
		errors.Is(err, services.ErrMessageQuotaExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
