package ports

import (
	"context"
	"time"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for token accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.TokenAccount) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TokenAccount, error)
	// LockByUserIDs locks the accounts of userIDs in ascending user id order.
	// Users without an account are absent from the result.
	LockByUserIDs(ctx context.Context, tx pgx.Tx, userIDs []uuid.UUID) ([]*domain.TokenAccount, error)
	Update(ctx context.Context, tx pgx.Tx, account *domain.TokenAccount) error
}

// IntroSettingsRepository defines persistence for per-recipient auction settings.
// A locked settings row is the recipient's auction lock.
type IntroSettingsRepository interface {
	Create(ctx context.Context, tx pgx.Tx, settings *domain.IntroSettings) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.IntroSettings, error)
	// LockByUserIDs locks the settings rows of userIDs in ascending user id order.
	LockByUserIDs(ctx context.Context, tx pgx.Tx, userIDs []uuid.UUID) ([]*domain.IntroSettings, error)
	// LockNextDue locks the row with the oldest next_check <= now, skipping rows
	// locked by other transactions and the users in exclude. Returns nil when none is due.
	LockNextDue(ctx context.Context, tx pgx.Tx, now time.Time, exclude []uuid.UUID) (*domain.IntroSettings, error)
	Update(ctx context.Context, tx pgx.Tx, settings *domain.IntroSettings) error
}

// ConversationRepository defines persistence for conversations.
type ConversationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Conversation, error)
	// LockByPair locks the conversation between a and b in either direction.
	LockByPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*domain.Conversation, error)
	// LockByRecipient locks the recipient's conversations in the given statuses, ordered by id.
	LockByRecipient(ctx context.Context, tx pgx.Tx, recipientID uuid.UUID, statuses []domain.BidStatus) ([]*domain.Conversation, error)
	// Update persists the mutable columns: statuses, last_update and last_message_sender.
	Update(ctx context.Context, tx pgx.Tx, conv *domain.Conversation) error
}

// JournalRepository defines persistence for the append-only journal.
type JournalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error
	// ListByUser returns entries where userID is source or target, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error)
	ExistsExternalTx(ctx context.Context, tx pgx.Tx, kind domain.JournalKind, externalTxID string) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
