package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mawadda-service/internal/models"
	"mawadda-service/internal/services"
	"mawadda-service/internal/telemetry"
)

// ReportHandler serves user reporting and the admin review queue.
type ReportHandler struct {
	reports *services.ReportService
	audit   *telemetry.AuditEmitter
}

func NewReportHandler(reports *services.ReportService, audit *telemetry.AuditEmitter) *ReportHandler {
	return &ReportHandler{reports: reports, audit: audit}
}

// ReportProfile files a profile report.
func (h *ReportHandler) ReportProfile(c *gin.Context) {
	var req struct {
		ProfileID    string `json:"profile_id" binding:"required"`
		Reason       string `json:"reason" binding:"required"`
		ReasonArabic string `json:"reason_arabic"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	id, err := h.reports.ReportProfile(c.Request.Context(), userID, req.ProfileID, req.Reason, req.ReasonArabic, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "profile report filed")
	c.JSON(http.StatusCreated, gin.H{"report_id": id})
}

// ReportMessage files a message report.
func (h *ReportHandler) ReportMessage(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		MessageID      string `json:"message_id" binding:"required"`
		Reason         string `json:"reason" binding:"required"`
		ReasonArabic   string `json:"reason_arabic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	id, err := h.reports.ReportMessage(c.Request.Context(), userID, req.ConversationID, req.MessageID, req.Reason, req.ReasonArabic)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "message report filed")
	c.JSON(http.StatusCreated, gin.H{"report_id": id})
}

// ListPending returns unreviewed reports for admins, oldest first.
func (h *ReportHandler) ListPending(c *gin.Context) {
	reports, err := h.reports.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Review resolves or dismisses a report, optionally applying a moderation
// action to the reported user.
func (h *ReportHandler) Review(c *gin.Context) {
	var req struct {
		Status          string `json:"status" binding:"required"`
		AdminNotes      string `json:"admin_notes"`
		Action          string `json:"action"`
		Reason          string `json:"reason"`
		DurationSeconds int64  `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewerID := c.GetString("userID")
	err := h.reports.Review(c.Request.Context(), services.ReviewInput{
		ReportID:   c.Param("report_id"),
		ReviewerID: reviewerID,
		Status:     models.ReportStatus(req.Status),
		AdminNotes: req.AdminNotes,
		Action:     models.ModerationActionType(req.Action),
		Reason:     req.Reason,
		Duration:   req.DurationSeconds,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "report reviewed")
	c.Status(http.StatusNoContent)
}

func (h *ReportHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
