package models

import (
	"time"

	"mawadda-service/internal/store"
)

// AccountStatus is the moderation state of a user account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// UserRecord is the users/{id} document. Relationship arrays mirror each
// other across documents: B ∈ A.LikedProfiles iff A ∈ B.WhoLikedMe, and the
// same for the block arrays.
type UserRecord struct {
	ID             string        `json:"id"`
	LikedProfiles  []string      `json:"liked_profiles"`
	WhoLikedMe     []string      `json:"who_liked_me"`
	BlockedUsers   []string      `json:"blocked_users"`
	BlockedBy      []string      `json:"blocked_by"`
	Conversations  []string      `json:"conversations"`
	ViewedProfiles []string      `json:"viewed_profiles"`
	TotalLikes     int           `json:"total_likes"`
	UnreadMessages int           `json:"unread_messages_count"`
	ReportCount    int           `json:"report_count"`
	WarningCount   int           `json:"warning_count"`
	StrikeCount    int           `json:"strike_count"`
	AccountStatus  AccountStatus `json:"account_status"`
	SuspendedUntil time.Time     `json:"suspended_until,omitempty"`
	ProfileData    map[string]any `json:"profile_data,omitempty"`
}

// UserFromDoc decodes a users/{id} document.
func UserFromDoc(d store.Doc) UserRecord {
	status := AccountStatus(docString(d.Data, "accountStatus"))
	if status == "" {
		status = AccountActive
	}
	return UserRecord{
		ID:             d.ID,
		LikedProfiles:  docStringSlice(d.Data, "likedProfiles"),
		WhoLikedMe:     docStringSlice(d.Data, "whoLikedMe"),
		BlockedUsers:   docStringSlice(d.Data, "blockedUsers"),
		BlockedBy:      docStringSlice(d.Data, "blockedBy"),
		Conversations:  docStringSlice(d.Data, "conversations"),
		ViewedProfiles: docStringSlice(d.Data, "viewedProfiles"),
		TotalLikes:     docInt(d.Data, "totalLikes"),
		UnreadMessages: docInt(d.Data, "unreadMessagesCount"),
		ReportCount:    docInt(d.Data, "reportCount"),
		WarningCount:   docInt(d.Data, "warningCount"),
		StrikeCount:    docInt(d.Data, "strikeCount"),
		AccountStatus:  status,
		SuspendedUntil: docTime(d.Data, "suspendedUntil"),
		ProfileData:    docMap(d.Data, "profileData"),
	}
}

// Fields returns the document representation for seeding and writes.
func (u UserRecord) Fields() map[string]any {
	status := u.AccountStatus
	if status == "" {
		status = AccountActive
	}
	fields := map[string]any{
		"likedProfiles":       stringsToAny(u.LikedProfiles),
		"whoLikedMe":          stringsToAny(u.WhoLikedMe),
		"blockedUsers":        stringsToAny(u.BlockedUsers),
		"blockedBy":           stringsToAny(u.BlockedBy),
		"conversations":       stringsToAny(u.Conversations),
		"viewedProfiles":      stringsToAny(u.ViewedProfiles),
		"totalLikes":          u.TotalLikes,
		"unreadMessagesCount": u.UnreadMessages,
		"reportCount":         u.ReportCount,
		"warningCount":        u.WarningCount,
		"strikeCount":         u.StrikeCount,
		"accountStatus":       string(status),
	}
	if !u.SuspendedUntil.IsZero() {
		fields["suspendedUntil"] = u.SuspendedUntil
	}
	if u.ProfileData != nil {
		fields["profileData"] = u.ProfileData
	}
	return fields
}

// BlockedEitherWay reports whether other appears in either block array.
func (u UserRecord) BlockedEitherWay(other string) bool {
	return containsString(u.BlockedUsers, other) || containsString(u.BlockedBy, other)
}

func containsString(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func stringsToAny(s []string) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = e
	}
	return out
}
