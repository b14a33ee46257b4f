package models

import (
	"time"

	"mawadda-service/internal/store"
)

// LikeRecord is the likes/{id} document: one record per directed pair.
// Uniqueness is enforced by query-before-insert, not by the store.
type LikeRecord struct {
	ID               string    `json:"id"`
	FromUserID       string    `json:"from_user_id"`
	ToUserID         string    `json:"to_user_id"`
	IsMutual         bool      `json:"is_mutual"`
	ViewedByReceiver bool      `json:"viewed_by_receiver"`
	CreatedAt        time.Time `json:"created_at"`
}

// LikeFromDoc decodes a likes/{id} document.
func LikeFromDoc(d store.Doc) LikeRecord {
	return LikeRecord{
		ID:               d.ID,
		FromUserID:       docString(d.Data, "fromUserId"),
		ToUserID:         docString(d.Data, "toUserId"),
		IsMutual:         docBool(d.Data, "isMutual"),
		ViewedByReceiver: docBool(d.Data, "viewedByReceiver"),
		CreatedAt:        docTime(d.Data, "createdAt"),
	}
}

// Fields returns the document representation for inserts.
func (l LikeRecord) Fields() map[string]any {
	return map[string]any{
		"fromUserId":       l.FromUserID,
		"toUserId":         l.ToUserID,
		"isMutual":         l.IsMutual,
		"viewedByReceiver": l.ViewedByReceiver,
		"createdAt":        store.ServerTimestamp(),
	}
}
