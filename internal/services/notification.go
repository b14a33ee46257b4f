package services

import (
	"context"
	"fmt"

	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/rabbitmq"
	"mawadda-service/internal/store"
)

// NotificationService is write-only fan-out: it records notification
// documents and mirrors them onto the event exchange. Failures here never
// fail the triggering operation.
type NotificationService struct {
	store     store.Client
	publisher rabbitmq.Publisher
}

func NewNotificationService(st store.Client, publisher rabbitmq.Publisher) *NotificationService {
	return &NotificationService{store: st, publisher: publisher}
}

// Create persists a notification and publishes its envelope.
func (s *NotificationService) Create(ctx context.Context, n models.Notification) (string, error) {
	id, err := s.store.Add(ctx, models.NotificationsCollection, n.Fields())
	if err != nil {
		return "", err
	}
	if s.publisher != nil {
		event := map[string]any{
			"notification_id": id,
			"user_id":         n.UserID,
			"type":            string(n.Type),
			"data":            n.Data,
		}
		if err := s.publisher.Publish(ctx, "notifications."+string(n.Type), event); err != nil {
			logger.Warn("notification publish failed", "type", n.Type, "err", err)
		}
	}
	return id, nil
}

// LikeReceived notifies to that from liked their profile.
func (s *NotificationService) LikeReceived(ctx context.Context, fromUserID, toUserID string) {
	_, err := s.Create(ctx, models.Notification{
		UserID: toUserID,
		Type:   models.NotificationLike,
		Title:  models.LocalizedText{Ar: "إعجاب جديد", En: "New like"},
		Body:   models.LocalizedText{Ar: "أحد الأعضاء أعجب بملفك الشخصي", En: "Someone liked your profile"},
		Data:   map[string]any{"fromUserId": fromUserID},
	})
	if err != nil {
		logger.Warn("like notification failed", "to", toUserID, "err", err)
	}
}

// MatchCreated notifies both sides of a mutual like.
func (s *NotificationService) MatchCreated(ctx context.Context, userA, userB string) {
	pairs := [][2]string{{userA, userB}, {userB, userA}}
	for _, p := range pairs {
		_, err := s.Create(ctx, models.Notification{
			UserID: p[0],
			Type:   models.NotificationMatch,
			Title:  models.LocalizedText{Ar: "توافق جديد", En: "It's a match"},
			Body:   models.LocalizedText{Ar: "أنتما معجبان ببعضكما، يمكنكما بدء محادثة الآن", En: "You liked each other, you can start a conversation now"},
			Data:   map[string]any{"matchedUserId": p[1]},
		})
		if err != nil {
			logger.Warn("match notification failed", "to", p[0], "err", err)
		}
	}
}

// MessageReceived notifies the recipient of a new message.
func (s *NotificationService) MessageReceived(ctx context.Context, fromUserID, toUserID, conversationID string) {
	_, err := s.Create(ctx, models.Notification{
		UserID: toUserID,
		Type:   models.NotificationMessage,
		Title:  models.LocalizedText{Ar: "رسالة جديدة", En: "New message"},
		Body:   models.LocalizedText{Ar: "لديك رسالة جديدة", En: "You have a new message"},
		Data:   map[string]any{"fromUserId": fromUserID, "conversationId": conversationID},
	})
	if err != nil {
		logger.Warn("message notification failed", "to", toUserID, "err", err)
	}
}

// ModerationNotice informs a user about an administrative action.
func (s *NotificationService) ModerationNotice(ctx context.Context, userID string, action models.ModerationActionType, reason string) {
	_, err := s.Create(ctx, models.Notification{
		UserID: userID,
		Type:   models.NotificationModeration,
		Title:  models.LocalizedText{Ar: "إشعار من الإدارة", En: "Notice from moderation"},
		Body: models.LocalizedText{
			Ar: "تم اتخاذ إجراء على حسابك",
			En: fmt.Sprintf("A %s was applied to your account", string(action)),
		},
		Data: map[string]any{"actionType": string(action), "reason": reason},
	})
	if err != nil {
		logger.Warn("moderation notification failed", "to", userID, "err", err)
	}
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	docs, err := s.store.Query(ctx, models.NotificationsCollection, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: store.OpEqual, Value: userID}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NotificationFromDoc(d))
	}
	return out, nil
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return s.store.Update(ctx, models.NotificationsCollection, notificationID, map[string]any{
		"isRead": true,
		"readAt": store.ServerTimestamp(),
	})
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	docs, err := s.store.Query(ctx, models.NotificationsCollection, store.Query{
		Filters: []store.Filter{
			{Field: "userId", Op: store.OpEqual, Value: userID},
			{Field: "isRead", Op: store.OpEqual, Value: false},
		},
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
