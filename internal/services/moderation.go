package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/store"
	"mawadda-service/internal/telemetry"
)

// ModerationService applies administrative actions to user accounts and
// records an auditable trail of every action.
type ModerationService struct {
	store         store.Client
	notifications *NotificationService
	audit         *telemetry.AuditEmitter
}

func NewModerationService(st store.Client, notifications *NotificationService, audit *telemetry.AuditEmitter) *ModerationService {
	return &ModerationService{store: st, notifications: notifications, audit: audit}
}

// Apply executes a moderation action against userID. Suspensions require a
// positive duration; every other action ignores it.
func (s *ModerationService) Apply(ctx context.Context, action models.ModerationAction) (string, error) {
	if _, err := s.store.Get(ctx, models.UsersCollection, action.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	var userUpdate map[string]any
	switch action.ActionType {
	case models.ActionWarning:
		userUpdate = map[string]any{"warningCount": store.Increment(1)}
	case models.ActionStrike:
		userUpdate = map[string]any{"strikeCount": store.Increment(1)}
	case models.ActionSuspension:
		if action.Duration <= 0 {
			return "", ErrDurationRequired
		}
		action.ExpiresAt = time.Now().Add(action.Duration)
		userUpdate = map[string]any{
			"accountStatus":  string(models.AccountSuspended),
			"suspendedUntil": action.ExpiresAt,
		}
	case models.ActionBan:
		userUpdate = map[string]any{"accountStatus": string(models.AccountBanned)}
	case models.ActionPhotoRemoval:
		userUpdate = map[string]any{"profileData.photos": []any{}}
	default:
		return "", ErrInvalidAction
	}

	if err := s.store.Update(ctx, models.UsersCollection, action.UserID, userUpdate); err != nil {
		return "", err
	}
	id, err := s.store.Add(ctx, models.ModerationActionsCollection, action.Fields())
	if err != nil {
		return "", err
	}

	s.notifications.ModerationNotice(ctx, action.UserID, action.ActionType, action.Reason)
	if s.audit != nil {
		s.audit.Emit(ctx, "WARN",
			fmt.Sprintf("moderation action %s applied by %s (action %s)", action.ActionType, action.ModeratorID, id),
			"", &action.UserID)
	}
	return id, nil
}

// ReinstateExpired reactivates every suspended account whose suspension
// window has passed. Returns the number of accounts reinstated.
func (s *ModerationService) ReinstateExpired(ctx context.Context) (int, error) {
	docs, err := s.store.Query(ctx, models.UsersCollection, store.Query{
		Filters: []store.Filter{{Field: "accountStatus", Op: store.OpEqual, Value: string(models.AccountSuspended)}},
	})
	if err != nil {
		return 0, err
	}

	now := time.Now()
	reinstated := 0
	for _, d := range docs {
		user := models.UserFromDoc(d)
		if user.SuspendedUntil.IsZero() || user.SuspendedUntil.After(now) {
			continue
		}
		if err := s.store.Update(ctx, models.UsersCollection, d.ID, map[string]any{
			"accountStatus": string(models.AccountActive),
		}); err != nil {
			logger.Error("reinstate failed", "userId", d.ID, "err", err)
			continue
		}
		reinstated++
	}
	return reinstated, nil
}

// History returns the moderation actions taken against userID, newest first.
func (s *ModerationService) History(ctx context.Context, userID string) ([]models.ModerationAction, error) {
	docs, err := s.store.Query(ctx, models.ModerationActionsCollection, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: store.OpEqual, Value: userID}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.ModerationAction, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ModerationActionFromDoc(d))
	}
	return out, nil
}
