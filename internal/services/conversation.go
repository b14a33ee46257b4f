package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mawadda-service/internal/models"
	"mawadda-service/internal/store"
)

// ConversationService drives the conversation lifecycle:
// pending → active (either side accepts) or pending → declined, both
// one-way. Messages before acceptance draw from a small per-sender quota.
type ConversationService struct {
	store         store.Client
	notifications *NotificationService
}

func NewConversationService(st store.Client, notifications *NotificationService) *ConversationService {
	return &ConversationService{store: st, notifications: notifications}
}

// CreateResult reports conversation creation.
type CreateResult struct {
	ConversationID string `json:"conversation_id"`
	Existing       bool   `json:"existing"`
}

// Create opens a conversation between two users, or returns the one that
// already exists for the pair regardless of argument order.
func (s *ConversationService) Create(ctx context.Context, userA, userB string) (CreateResult, error) {
	if userA == userB {
		return CreateResult{}, ErrSelfAction
	}

	pair := models.CanonicalPair(userA, userB)
	docs, err := s.store.Query(ctx, models.ConversationsCollection, store.Query{
		Filters: []store.Filter{{Field: "participants", Op: store.OpEqual, Value: pair}},
		Limit:   1,
	})
	if err != nil {
		return CreateResult{}, err
	}
	if len(docs) > 0 {
		return CreateResult{ConversationID: docs[0].ID, Existing: true}, nil
	}

	conv := models.Conversation{
		Participants: pair,
		ParticipantsM: map[string]models.ParticipantState{
			pair[0]: {MessagesAllowed: models.InitialMessageAllowance},
			pair[1]: {MessagesAllowed: models.InitialMessageAllowance},
		},
		Status: models.ConversationPending,
	}
	id, err := s.store.Add(ctx, models.ConversationsCollection, conv.Fields())
	if err != nil {
		return CreateResult{}, err
	}

	for _, userID := range pair {
		if err := s.store.Update(ctx, models.UsersCollection, userID, map[string]any{
			"conversations": store.ArrayUnion(id),
		}); err != nil {
			return CreateResult{}, err
		}
	}
	return CreateResult{ConversationID: id}, nil
}

// Get returns a conversation visible to userID.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID string) (models.Conversation, error) {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return models.Conversation{}, err
	}
	if !conv.HasParticipant(userID) {
		return models.Conversation{}, ErrNotParticipant
	}
	return conv, nil
}

// SendMessage appends a message, maintaining the pre-acceptance quota, the
// last-message preview, and the recipient's unread counters.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}

	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return models.Message{}, err
	}
	if !conv.HasParticipant(senderID) {
		return models.Message{}, ErrNotParticipant
	}
	if conv.Closed() {
		return models.Message{}, ErrConversationClosed
	}

	state := conv.ParticipantsM[senderID]
	if conv.Status != models.ConversationActive && !state.HasAccepted {
		if state.MessagesAllowed <= 0 {
			return models.Message{}, ErrMessageQuotaExceeded
		}
		if err := s.store.Update(ctx, models.ConversationsCollection, conversationID, map[string]any{
			participantField(senderID, "messagesAllowed"): store.Increment(-1),
		}); err != nil {
			return models.Message{}, err
		}
	}

	msg := models.Message{SenderID: senderID, Text: text}
	msgID, err := s.store.Add(ctx, models.MessagesCollection(conversationID), msg.Fields())
	if err != nil {
		return models.Message{}, err
	}

	other := conv.OtherParticipant(senderID)
	if err := s.store.Update(ctx, models.ConversationsCollection, conversationID, map[string]any{
		"lastMessage":   models.TruncatePreview(text),
		"lastMessageBy": senderID,
		"lastMessageAt": store.ServerTimestamp(),
		participantField(other, "unreadCount"): store.Increment(1),
	}); err != nil {
		return models.Message{}, err
	}
	if err := s.store.Update(ctx, models.UsersCollection, other, map[string]any{
		"unreadMessagesCount": store.Increment(1),
	}); err != nil {
		return models.Message{}, err
	}

	s.notifications.MessageReceived(ctx, senderID, other, conversationID)

	stored, err := s.store.Get(ctx, models.MessagesCollection(conversationID), msgID)
	if err != nil {
		// the write landed; return what we know
		msg.ID = msgID
		return msg, nil
	}
	return models.MessageFromDoc(stored), nil
}

// Accept moves the conversation to active on behalf of userID and lifts
// their quota.
func (s *ConversationService) Accept(ctx context.Context, conversationID, userID string) error {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if conv.Closed() {
		return ErrConversationClosed
	}

	if err := s.store.Update(ctx, models.ConversationsCollection, conversationID, map[string]any{
		"status": string(models.ConversationActive),
		participantField(userID, "hasAccepted"):     true,
		participantField(userID, "messagesAllowed"): models.UnlimitedMessageAllowance,
	}); err != nil {
		return err
	}

	system := models.Message{SenderID: userID, Text: "Conversation accepted", IsSystemMessage: true}
	if _, err := s.store.Add(ctx, models.MessagesCollection(conversationID), system.Fields()); err != nil {
		return err
	}
	return nil
}

// Decline terminally declines the conversation on behalf of userID.
func (s *ConversationService) Decline(ctx context.Context, conversationID, userID string) error {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if conv.Closed() {
		return nil
	}
	return s.store.Update(ctx, models.ConversationsCollection, conversationID, map[string]any{
		"status": string(models.ConversationDeclined),
	})
}

// MarkRead zeroes userID's per-conversation unread counter and debits their
// global counter by exactly the amount cleared.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, userID string) error {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}

	cleared := conv.ParticipantsM[userID].UnreadCount
	if err := s.store.Update(ctx, models.ConversationsCollection, conversationID, map[string]any{
		participantField(userID, "unreadCount"): 0,
		participantField(userID, "lastReadAt"):  store.ServerTimestamp(),
	}); err != nil {
		return err
	}
	if cleared > 0 {
		return s.store.Update(ctx, models.UsersCollection, userID, map[string]any{
			"unreadMessagesCount": store.Increment(int64(-cleared)),
		})
	}
	return nil
}

// LimitCheck is the read-only projection of the send quota, for UI gating.
// It must stay consistent with SendMessage's enforcement.
type LimitCheck struct {
	CanSend      bool   `json:"can_send"`
	MessagesLeft int    `json:"messages_left"`
	Unlimited    bool   `json:"unlimited"`
	Reason       string `json:"reason,omitempty"`
}

// CheckMessageLimit reports whether userID may send right now and how many
// pre-acceptance sends remain.
func (s *ConversationService) CheckMessageLimit(ctx context.Context, conversationID, userID string) (LimitCheck, error) {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return LimitCheck{}, err
	}
	if !conv.HasParticipant(userID) {
		return LimitCheck{}, ErrNotParticipant
	}

	if conv.Closed() {
		return LimitCheck{Reason: "conversation_closed"}, nil
	}
	state := conv.ParticipantsM[userID]
	if conv.Status == models.ConversationActive || state.HasAccepted {
		return LimitCheck{CanSend: true, Unlimited: true}, nil
	}
	check := LimitCheck{CanSend: state.MessagesAllowed > 0, MessagesLeft: state.MessagesAllowed}
	if !check.CanSend {
		check.Reason = "message_limit_reached"
	}
	return check, nil
}

// Messages returns the conversation log in chronological order.
func (s *ConversationService) Messages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	docs, err := s.store.Query(ctx, models.MessagesCollection(conversationID), store.Query{
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.MessageFromDoc(d))
	}
	return out, nil
}

// List returns userID's conversations, most recently active first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	docs, err := s.store.Query(ctx, models.ConversationsCollection, store.Query{
		Filters: []store.Filter{{Field: "participants", Op: store.OpArrayContains, Value: userID}},
		OrderBy: "lastMessageAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Conversation, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ConversationFromDoc(d))
	}
	return out, nil
}

// ListenMessages streams the chronological message log on every change,
// starting with the current snapshot. The channel closes with ctx.
func (s *ConversationService) ListenMessages(ctx context.Context, conversationID, userID string) (<-chan []models.Message, error) {
	conv, err := s.fetch(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	snapshots, err := s.store.Listen(ctx, models.MessagesCollection(conversationID), store.Query{
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, err
	}

	out := make(chan []models.Message, 1)
	go func() {
		defer close(out)
		for docs := range snapshots {
			msgs := make([]models.Message, 0, len(docs))
			for _, d := range docs {
				msgs = append(msgs, models.MessageFromDoc(d))
			}
			select {
			case out <- msgs:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *ConversationService) fetch(ctx context.Context, conversationID string) (models.Conversation, error) {
	doc, err := s.store.Get(ctx, models.ConversationsCollection, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Conversation{}, ErrConversationNotFound
		}
		return models.Conversation{}, err
	}
	return models.ConversationFromDoc(doc), nil
}

func participantField(userID, field string) string {
	return fmt.Sprintf("participantsMap.%s.%s", userID, field)
}
