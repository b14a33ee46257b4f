package services

import "errors"

// Sentinel errors surfaced to handlers; they map onto HTTP statuses there.
var (
	ErrSelfAction           = errors.New("cannot perform this action on yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("not a conversation participant")
	ErrConversationClosed   = errors.New("conversation is declined or blocked")
	ErrMessageQuotaExceeded = errors.New("message limit reached")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrReportNotFound       = errors.New("report not found")
	ErrInvalidReportStatus  = errors.New("report status must be resolved or dismissed")
	ErrInvalidAction        = errors.New("unknown moderation action")
	ErrDurationRequired     = errors.New("suspension requires a duration")
)
