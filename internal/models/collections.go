package models

import "fmt"

// Collection names of the persisted state layout.
const (
	UsersCollection             = "users"
	LikesCollection             = "likes"
	BlocksCollection            = "blocks"
	ConversationsCollection     = "conversations"
	NotificationsCollection     = "notifications"
	ReportsCollection           = "reports"
	ModerationActionsCollection = "moderationActions"
)

// MessagesCollection is the per-conversation message subcollection path.
func MessagesCollection(conversationID string) string {
	return fmt.Sprintf("%s/%s/messages", ConversationsCollection, conversationID)
}
