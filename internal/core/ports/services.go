package ports

import (
	"context"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// Clock is the single source of "now". One value is read per transaction.
type Clock interface {
	Now() time.Time
}

// NotificationSink receives best-effort events after commit. Notify must not block.
type NotificationSink interface {
	Notify(n domain.Notification)
}

// BridgeReceipt describes a completed on-chain movement.
type BridgeReceipt struct {
	ExternalTxID string
	Amount       money.Money
}

// OnChainBridge moves real funds. It is never called inside a database transaction.
type OnChainBridge interface {
	// Sweep collects pending deposits for userID. A nil receipt means nothing was swept.
	Sweep(ctx context.Context, userID uuid.UUID) (*BridgeReceipt, error)
	// Send pays amount to dest. Calls with the same reference are idempotent.
	Send(ctx context.Context, reference, dest string, amount money.Money) (*BridgeReceipt, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, root bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Root   bool
}

// IdempotencyCache is the Redis-layer idempotency check.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReaperLease ensures a single replica drives the reaper loop.
type ReaperLease interface {
	// Acquire takes or extends the lease for holder. Returns false if another holder owns it.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, holder string) error
}

// --- Service Ports (Business Logic) ---

// LedgerService owns token balances and the journal.
type LedgerService interface {
	OpenAccount(ctx context.Context, userID uuid.UUID) (*domain.TokenAccount, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*Balance, error)
	CreditDeposit(ctx context.Context, userID uuid.UUID) (*domain.JournalEntry, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.JournalEntry, error)
	ListJournal(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error)
}

// Balance is the read model for get_balance.
type Balance struct {
	Confirmed   money.Money
	Unconfirmed money.Money
}

// WithdrawRequest holds validated input for an outbound transfer.
type WithdrawRequest struct {
	UserID      uuid.UUID
	Amount      money.Money
	DestAddress string
}

// AuctionService runs the conversation-bidding auction.
type AuctionService interface {
	CreateConversation(ctx context.Context, req CreateConversationRequest) (*domain.CreateConversationResult, error)
	AcceptConversation(ctx context.Context, conversationID, openerID uuid.UUID) (*domain.Conversation, error)
	PostReply(ctx context.Context, conversationID, authorID uuid.UUID) (*domain.Conversation, error)
	UpdateDailyLimit(ctx context.Context, recipientID uuid.UUID, limit int) (*domain.IntroSettings, error)
}

// CreateConversationRequest holds validated input for opening a conversation.
type CreateConversationRequest struct {
	SenderID       uuid.UUID
	RecipientID    uuid.UUID
	BidPrice       money.Money
	IdempotencyKey string // optional
}

// ReaperService resolves due auction cycles.
type ReaperService interface {
	RunCycle(ctx context.Context, maxRecipients int) (*ReaperStats, error)
}

// ReaperStats summarises one RunCycle call.
type ReaperStats struct {
	Resolved      int         `json:"resolved"`
	Failed        int         `json:"failed"`
	Won           int         `json:"won"`
	Lost          int         `json:"lost"`
	TimedOut      int         `json:"timed_out"`
	RefundedTotal money.Money `json:"refunded_total"`
	SettledTotal  money.Money `json:"settled_total"`
}
