package models

import (
	"time"

	"mawadda-service/internal/store"
)

// BlockRecord is the blocks/{id} document. A record in either direction
// excludes both users from each other's discovery feeds.
type BlockRecord struct {
	ID            string    `json:"id"`
	BlockerUserID string    `json:"blocker_user_id"`
	BlockedUserID string    `json:"blocked_user_id"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// BlockFromDoc decodes a blocks/{id} document.
func BlockFromDoc(d store.Doc) BlockRecord {
	return BlockRecord{
		ID:            d.ID,
		BlockerUserID: docString(d.Data, "blockerUserId"),
		BlockedUserID: docString(d.Data, "blockedUserId"),
		Reason:        docString(d.Data, "reason"),
		CreatedAt:     docTime(d.Data, "createdAt"),
	}
}

// Fields returns the document representation for inserts.
func (b BlockRecord) Fields() map[string]any {
	fields := map[string]any{
		"blockerUserId": b.BlockerUserID,
		"blockedUserId": b.BlockedUserID,
		"createdAt":     store.ServerTimestamp(),
	}
	if b.Reason != "" {
		fields["reason"] = b.Reason
	}
	return fields
}
