package models

import (
	"time"

	"mawadda-service/internal/store"
)

// ModerationActionType enumerates the administrative actions.
type ModerationActionType string

const (
	ActionWarning      ModerationActionType = "warning"
	ActionStrike       ModerationActionType = "strike"
	ActionSuspension   ModerationActionType = "suspension"
	ActionBan          ModerationActionType = "ban"
	ActionPhotoRemoval ModerationActionType = "photo_removal"
)

// ModerationAction is the moderationActions/{id} document.
type ModerationAction struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	ModeratorID string               `json:"moderator_id"`
	ActionType  ModerationActionType `json:"action_type"`
	Reason      string               `json:"reason"`
	Duration    time.Duration        `json:"duration,omitempty"`
	ExpiresAt   time.Time            `json:"expires_at,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ModerationActionFromDoc decodes a moderationActions/{id} document.
func ModerationActionFromDoc(d store.Doc) ModerationAction {
	return ModerationAction{
		ID:          d.ID,
		UserID:      docString(d.Data, "userId"),
		ModeratorID: docString(d.Data, "moderatorId"),
		ActionType:  ModerationActionType(docString(d.Data, "actionType")),
		Reason:      docString(d.Data, "reason"),
		Duration:    time.Duration(docInt(d.Data, "durationSeconds")) * time.Second,
		ExpiresAt:   docTime(d.Data, "expiresAt"),
		Notes:       docString(d.Data, "notes"),
		CreatedAt:   docTime(d.Data, "createdAt"),
	}
}

// Fields returns the document representation for inserts.
func (a ModerationAction) Fields() map[string]any {
	fields := map[string]any{
		"userId":      a.UserID,
		"moderatorId": a.ModeratorID,
		"actionType":  string(a.ActionType),
		"reason":      a.Reason,
		"createdAt":   store.ServerTimestamp(),
	}
	if a.Duration > 0 {
		fields["durationSeconds"] = int(a.Duration / time.Second)
	}
	if !a.ExpiresAt.IsZero() {
		fields["expiresAt"] = a.ExpiresAt
	}
	if a.Notes != "" {
		fields["notes"] = a.Notes
	}
	return fields
}
