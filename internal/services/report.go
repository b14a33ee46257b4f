package services

import (
	"context"
	"errors"
	"time"

	"mawadda-service/internal/models"
	"mawadda-service/internal/store"
)

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// messageContextSize is how many surrounding messages are snapshotted with a
// message report.
const messageContextSize = 10

// ReportService records user reports with evidence snapshots and runs the
// admin review flow.
type ReportService struct {
	store      store.Client
	moderation *ModerationService
}

func NewReportService(st store.Client, moderation *ModerationService) *ReportService {
	return &ReportService{store: st, moderation: moderation}
}

// ReportProfile files a profile report, snapshotting the reported user's
// profile data at report time.
func (s *ReportService) ReportProfile(ctx context.Context, reporterID, reportedUserID, reason, reasonArabic, description string) (string, error) {
	if reporterID == reportedUserID {
		return "", ErrSelfAction
	}
	doc, err := s.store.Get(ctx, models.UsersCollection, reportedUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	reported := models.UserFromDoc(doc)

	report := models.Report{
		ReportType:          models.ReportProfile,
		ReporterID:          reporterID,
		ReportedUserID:      reportedUserID,
		ReportedProfileData: reported.ProfileData,
		Reason:              reason,
		ReasonArabic:        reasonArabic,
		Description:         description,
	}
	id, err := s.store.Add(ctx, models.ReportsCollection, report.Fields())
	if err != nil {
		return "", err
	}
	if err := s.store.Update(ctx, models.UsersCollection, reportedUserID, map[string]any{
		"reportCount": store.Increment(1),
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ReportMessage files a message report. The reported message and its most
// recent surrounding messages are snapshotted so review works even if the
// conversation is later deleted.
func (s *ReportService) ReportMessage(ctx context.Context, reporterID, conversationID, messageID, reason, reasonArabic string) (string, error) {
	convDoc, err := s.store.Get(ctx, models.ConversationsCollection, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrConversationNotFound
		}
		return "", err
	}
	conv := models.ConversationFromDoc(convDoc)
	if !conv.HasParticipant(reporterID) {
		return "", ErrNotParticipant
	}

	msgDoc, err := s.store.Get(ctx, models.MessagesCollection(conversationID), messageID)
	if err != nil {
		return "", err
	}
	msg := models.MessageFromDoc(msgDoc)
	if msg.SenderID == reporterID {
		return "", ErrSelfAction
	}

	ctxDocs, err := s.store.Query(ctx, models.MessagesCollection(conversationID), store.Query{
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   messageContextSize,
	})
	if err != nil {
		return "", err
	}
	surrounding := make([]any, 0, len(ctxDocs))
	for i := len(ctxDocs) - 1; i >= 0; i-- { // back to chronological order
		m := models.MessageFromDoc(ctxDocs[i])
		surrounding = append(surrounding, map[string]any{
			"messageId": m.ID,
			"senderId":  m.SenderID,
			"text":      m.Text,
			"createdAt": m.CreatedAt,
		})
	}

	report := models.Report{
		ReportType:     models.ReportMessage,
		ReporterID:     reporterID,
		ReportedUserID: msg.SenderID,
		ReportedMessageData: map[string]any{
			"conversationId": conversationID,
			"messageId":      messageID,
			"senderId":       msg.SenderID,
			"text":           msg.Text,
			"createdAt":      msg.CreatedAt,
			"context":        surrounding,
		},
		Reason:       reason,
		ReasonArabic: reasonArabic,
	}
	id, err := s.store.Add(ctx, models.ReportsCollection, report.Fields())
	if err != nil {
		return "", err
	}
	if err := s.store.Update(ctx, models.UsersCollection, msg.SenderID, map[string]any{
		"reportCount": store.Increment(1),
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ReviewInput is an admin's resolution of a report.
type ReviewInput struct {
	ReportID   string
	ReviewerID string
	Status     models.ReportStatus
	AdminNotes string
	// Action, when set on a resolved report, is applied through the
	// moderation service against the reported user.
	Action   models.ModerationActionType
	Reason   string
	Duration int64 // seconds, suspensions only
}

// Review closes out a report. Resolving with an action applies that action
// to the reported user.
func (s *ReportService) Review(ctx context.Context, in ReviewInput) error {
	if in.Status != models.ReportResolved && in.Status != models.ReportDismissed {
		return ErrInvalidReportStatus
	}
	doc, err := s.store.Get(ctx, models.ReportsCollection, in.ReportID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	report := models.ReportFromDoc(doc)

	update := map[string]any{
		"status":     string(in.Status),
		"reviewedBy": in.ReviewerID,
		"reviewedAt": store.ServerTimestamp(),
	}
	if in.AdminNotes != "" {
		update["adminNotes"] = in.AdminNotes
	}
	if in.Action != "" {
		update["actionTaken"] = string(in.Action)
	}
	if err := s.store.Update(ctx, models.ReportsCollection, in.ReportID, update); err != nil {
		return err
	}

	if in.Status == models.ReportResolved && in.Action != "" {
		reason := in.Reason
		if reason == "" {
			reason = report.Reason
		}
		_, err := s.moderation.Apply(ctx, models.ModerationAction{
			UserID:      report.ReportedUserID,
			ModeratorID: in.ReviewerID,
			ActionType:  in.Action,
			Reason:      reason,
			Duration:    secondsToDuration(in.Duration),
		})
		return err
	}
	return nil
}

// ListPending returns unreviewed reports, oldest first.
func (s *ReportService) ListPending(ctx context.Context) ([]models.Report, error) {
	docs, err := s.store.Query(ctx, models.ReportsCollection, store.Query{
		Filters: []store.Filter{{Field: "status", Op: store.OpEqual, Value: string(models.ReportPending)}},
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ReportFromDoc(d))
	}
	return out, nil
}

// AgainstUser returns all reports filed against userID, newest first.
func (s *ReportService) AgainstUser(ctx context.Context, userID string) ([]models.Report, error) {
	docs, err := s.store.Query(ctx, models.ReportsCollection, store.Query{
		Filters: []store.Filter{{Field: "reportedUserId", Op: store.OpEqual, Value: userID}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ReportFromDoc(d))
	}
	return out, nil
}
