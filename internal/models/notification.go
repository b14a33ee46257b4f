package models

import (
	"time"

	"mawadda-service/internal/store"
)

// NotificationType enumerates the produced notification kinds.
type NotificationType string

const (
	NotificationLike       NotificationType = "like"
	NotificationMatch      NotificationType = "match"
	NotificationMessage    NotificationType = "message"
	NotificationModeration NotificationType = "moderation"
)

// LocalizedText carries the Arabic and English renderings of a string.
type LocalizedText struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Notification is the notifications/{id} document.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     LocalizedText    `json:"title"`
	Body      LocalizedText    `json:"body"`
	Data      map[string]any   `json:"data,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    time.Time        `json:"read_at,omitempty"`
}

// NotificationFromDoc decodes a notifications/{id} document.
func NotificationFromDoc(d store.Doc) Notification {
	title := docMap(d.Data, "title")
	body := docMap(d.Data, "body")
	return Notification{
		ID:        d.ID,
		UserID:    docString(d.Data, "userId"),
		Type:      NotificationType(docString(d.Data, "type")),
		Title:     LocalizedText{Ar: docString(title, "ar"), En: docString(title, "en")},
		Body:      LocalizedText{Ar: docString(body, "ar"), En: docString(body, "en")},
		Data:      docMap(d.Data, "data"),
		IsRead:    docBool(d.Data, "isRead"),
		CreatedAt: docTime(d.Data, "createdAt"),
		ReadAt:    docTime(d.Data, "readAt"),
	}
}

// Fields returns the document representation for inserts.
func (n Notification) Fields() map[string]any {
	fields := map[string]any{
		"userId":    n.UserID,
		"type":      string(n.Type),
		"title":     map[string]any{"ar": n.Title.Ar, "en": n.Title.En},
		"body":      map[string]any{"ar": n.Body.Ar, "en": n.Body.En},
		"isRead":    false,
		"createdAt": store.ServerTimestamp(),
	}
	if n.Data != nil {
		fields["data"] = n.Data
	}
	return fields
}
