package postgres

import (
	"context"
	"fmt"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const journalColumns = `id, kind, source_id, target_id, amount, fee, net, conversation_id, reason,
	dest_address, external_txid, created_at, signature`

// JournalRepo implements ports.JournalRepository. Entries are never updated.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Create appends an entry within the transaction that moved the balance.
func (r *JournalRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.JournalEntry) error {
	query := `INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.Kind, e.SourceID, e.TargetID, e.Amount, e.Fee, e.Net,
		e.ConversationID, e.Reason, e.DestAddress, e.ExternalTxID,
		e.CreatedAt, e.Signature,
	)
	if err != nil {
		if isUniqueViolation(err, externalTxConstraint) {
			return fmt.Errorf("insert journal entry: %w", domain.ErrDuplicateExternalTx)
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListByUser returns the newest entries touching userID.
func (r *JournalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries
		WHERE source_id = $1 OR target_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		e := &domain.JournalEntry{}
		if err := rows.Scan(
			&e.ID, &e.Kind, &e.SourceID, &e.TargetID, &e.Amount, &e.Fee, &e.Net,
			&e.ConversationID, &e.Reason, &e.DestAddress, &e.ExternalTxID,
			&e.CreatedAt, &e.Signature,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// ExistsExternalTx checks whether a bridge transaction was already journaled.
func (r *JournalRepo) ExistsExternalTx(ctx context.Context, tx pgx.Tx, kind domain.JournalKind, externalTxID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM journal_entries WHERE kind = $1 AND external_txid = $2)`

	var exists bool
	if err := tx.QueryRow(ctx, query, kind, externalTxID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check external tx: %w", err)
	}
	return exists, nil
}
