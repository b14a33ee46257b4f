package models

import (
	"time"

	"mawadda-service/internal/store"
)

// Message is a conversations/{id}/messages/{id} document. The log is
// append-only, ordered by createdAt ascending.
type Message struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	Text            string    `json:"text"`
	IsSystemMessage bool      `json:"is_system_message"`
	CreatedAt       time.Time `json:"created_at"`
	ReadAt          time.Time `json:"read_at,omitempty"`
}

// MessageFromDoc decodes a message document.
func MessageFromDoc(d store.Doc) Message {
	return Message{
		ID:              d.ID,
		SenderID:        docString(d.Data, "senderId"),
		Text:            docString(d.Data, "text"),
		IsSystemMessage: docBool(d.Data, "isSystemMessage"),
		CreatedAt:       docTime(d.Data, "createdAt"),
		ReadAt:          docTime(d.Data, "readAt"),
	}
}

// Fields returns the document representation for inserts.
func (m Message) Fields() map[string]any {
	return map[string]any{
		"senderId":        m.SenderID,
		"text":            m.Text,
		"isSystemMessage": m.IsSystemMessage,
		"createdAt":       store.ServerTimestamp(),
	}
}

// ConversationEvent is broadcast to websocket subscribers.
type ConversationEvent struct {
	Type     string    `json:"type"`
	Message  *Message  `json:"message,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Status   string    `json:"status,omitempty"`
}
