package domain

import (
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// NotificationKind identifies what happened to a user's conversation.
type NotificationKind string

const (
	NotifyIntroReceived NotificationKind = "INTRO_RECEIVED"
	NotifyBidLosing     NotificationKind = "BID_LOSING"
	NotifyBidWon        NotificationKind = "BID_WON"
	NotifyBidLost       NotificationKind = "BID_LOST"
	NotifyBidExpired    NotificationKind = "BID_EXPIRED"
	NotifyBidAccepted   NotificationKind = "BID_ACCEPTED"
	NotifyMessageNew    NotificationKind = "MESSAGE_NEW"
)

// Notification is a best-effort event for UserID. It is emitted only after the
// transaction that caused it has committed.
type Notification struct {
	Kind           NotificationKind `json:"kind"`
	UserID         uuid.UUID        `json:"user_id"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	Amount         money.Money      `json:"amount"`
	CreatedAt      time.Time        `json:"created_at"`
}
