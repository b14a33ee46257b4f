package models

import (
	"sort"
	"time"

	"mawadda-service/internal/store"
)

// ConversationStatus is the conversation lifecycle state.
// pending → active (either side accepts) | declined. declined and blocked
// are terminal; blocked is set administratively, never by a transition here.
type ConversationStatus string

const (
	ConversationPending  ConversationStatus = "pending"
	ConversationActive   ConversationStatus = "active"
	ConversationDeclined ConversationStatus = "declined"
	ConversationBlocked  ConversationStatus = "blocked"
)

const (
	// InitialMessageAllowance is the pre-acceptance message quota per sender.
	InitialMessageAllowance = 2
	// UnlimitedMessageAllowance is the effectively-unlimited sentinel set on
	// accept. Enforcement bypasses the quota once the conversation is active,
	// so the value itself is never consumed.
	UnlimitedMessageAllowance = 999
	// LastMessagePreviewLimit caps the stored last-message preview.
	LastMessagePreviewLimit = 100
)

// ParticipantState is the per-user entry in participantsMap.
type ParticipantState struct {
	UnreadCount     int       `json:"unread_count"`
	LastReadAt      time.Time `json:"last_read_at,omitempty"`
	MessagesAllowed int       `json:"messages_allowed"`
	HasAccepted     bool      `json:"has_accepted"`
}

// Conversation is the conversations/{id} document.
type Conversation struct {
	ID            string                      `json:"id"`
	Participants  []string                    `json:"participants"`
	ParticipantsM map[string]ParticipantState `json:"participants_map"`
	Status        ConversationStatus          `json:"status"`
	LastMessage   string                      `json:"last_message,omitempty"`
	LastMessageBy string                      `json:"last_message_by,omitempty"`
	LastMessageAt time.Time                   `json:"last_message_at,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// CanonicalPair sorts a user pair so one unordered pair maps to exactly one
// conversation.
func CanonicalPair(u1, u2 string) []string {
	pair := []string{u1, u2}
	sort.Strings(pair)
	return pair
}

// ConversationFromDoc decodes a conversations/{id} document.
func ConversationFromDoc(d store.Doc) Conversation {
	c := Conversation{
		ID:            d.ID,
		Participants:  docStringSlice(d.Data, "participants"),
		ParticipantsM: make(map[string]ParticipantState),
		Status:        ConversationStatus(docString(d.Data, "status")),
		LastMessage:   docString(d.Data, "lastMessage"),
		LastMessageBy: docString(d.Data, "lastMessageBy"),
		LastMessageAt: docTime(d.Data, "lastMessageAt"),
		CreatedAt:     docTime(d.Data, "createdAt"),
	}
	for userID, raw := range docMap(d.Data, "participantsMap") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c.ParticipantsM[userID] = ParticipantState{
			UnreadCount:     docInt(entry, "unreadCount"),
			LastReadAt:      docTime(entry, "lastReadAt"),
			MessagesAllowed: docInt(entry, "messagesAllowed"),
			HasAccepted:     docBool(entry, "hasAccepted"),
		}
	}
	return c
}

// Fields returns the document representation for inserts.
func (c Conversation) Fields() map[string]any {
	participantsMap := make(map[string]any, len(c.ParticipantsM))
	for userID, state := range c.ParticipantsM {
		entry := map[string]any{
			"unreadCount":     state.UnreadCount,
			"messagesAllowed": state.MessagesAllowed,
			"hasAccepted":     state.HasAccepted,
		}
		if !state.LastReadAt.IsZero() {
			entry["lastReadAt"] = state.LastReadAt
		}
		participantsMap[userID] = entry
	}
	return map[string]any{
		"participants":    stringsToAny(c.Participants),
		"participantsMap": participantsMap,
		"status":          string(c.Status),
		"createdAt":       store.ServerTimestamp(),
	}
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return containsString(c.Participants, userID)
}

// OtherParticipant returns the participant that is not userID.
func (c Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// Closed reports whether the conversation accepts no further messages.
func (c Conversation) Closed() bool {
	return c.Status == ConversationDeclined || c.Status == ConversationBlocked
}

// TruncatePreview shortens text to the stored preview limit.
func TruncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= LastMessagePreviewLimit {
		return text
	}
	return string(runes[:LastMessagePreviewLimit])
}
