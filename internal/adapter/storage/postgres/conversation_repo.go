package postgres

import (
	"context"
	"errors"
	"fmt"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const conversationColumns = `id, sender_id, recipient_id, bid_price, bid_status, sender_status, recipient_status,
	last_message_sender, created_at, last_update, signature`

// ConversationRepo implements ports.ConversationRepository.
type ConversationRepo struct {
	pool Pool
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(pool Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	err := row.Scan(
		&c.ID, &c.SenderID, &c.RecipientID, &c.BidPrice, &c.BidStatus,
		&c.SenderStatus, &c.RecipientStatus, &c.LastMessageSender,
		&c.CreatedAt, &c.LastUpdate, &c.Signature,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a conversation. A second conversation for the same unordered
// pair fails with domain.ErrDuplicatePair.
func (r *ConversationRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Conversation) error {
	query := `INSERT INTO conversations (` + conversationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.SenderID, c.RecipientID, c.BidPrice, c.BidStatus,
		c.SenderStatus, c.RecipientStatus, c.LastMessageSender,
		c.CreatedAt, c.LastUpdate, c.Signature,
	)
	if err != nil {
		if isUniqueViolation(err, pairConstraint) {
			return fmt.Errorf("insert conversation: %w", domain.ErrDuplicatePair)
		}
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// GetByID fetches a conversation without locking.
func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	c, err := scanConversation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation by id: %w", err)
	}
	return c, nil
}

// LockByID fetches a conversation with pessimistic locking.
// This MUST be called within a transaction.
func (r *ConversationRepo) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 FOR UPDATE`

	c, err := scanConversation(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock conversation by id: %w", err)
	}
	return c, nil
}

// LockByPair locks the pair's conversation whichever side started it.
func (r *ConversationRepo) LockByPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE LEAST(sender_id, recipient_id) = $1 AND GREATEST(sender_id, recipient_id) = $2
		FOR UPDATE`

	lo, hi := domain.PairKey(a, b)
	c, err := scanConversation(tx.QueryRow(ctx, query, lo, hi))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock conversation by pair: %w", err)
	}
	return c, nil
}

// LockByRecipient locks the recipient's conversations in statuses, ascending id.
func (r *ConversationRepo) LockByRecipient(ctx context.Context, tx pgx.Tx, recipientID uuid.UUID, statuses []domain.BidStatus) ([]*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE recipient_id = $1 AND bid_status = ANY($2)
		ORDER BY id FOR UPDATE`

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := tx.Query(ctx, query, recipientID, names)
	if err != nil {
		return nil, fmt.Errorf("lock recipient conversations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

// Update persists the status columns. Price, parties and created_at never change.
func (r *ConversationRepo) Update(ctx context.Context, tx pgx.Tx, c *domain.Conversation) error {
	query := `UPDATE conversations
		SET bid_status = $1, sender_status = $2, recipient_status = $3, last_message_sender = $4, last_update = $5,
			signature = $6
		WHERE id = $7`

	tag, err := tx.Exec(ctx, query,
		c.BidStatus, c.SenderStatus, c.RecipientStatus, c.LastMessageSender, c.LastUpdate, c.Signature, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found: %s", c.ID)
	}
	return nil
}
