package domain

import (
	"github.com/google/uuid"
)

// CreateConversationResult is what an idempotent create replays.
type CreateConversationResult struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	BidStatus      BidStatus `json:"bid_status"`
}

// BuildCreateIdempotencyKey scopes a client key to the sender so two users
// cannot collide on the same key.
func BuildCreateIdempotencyKey(senderID uuid.UUID, clientKey string) string {
	return "conversation:" + senderID.String() + ":" + clientKey
}
