package postgres

import (
	"context"
	"errors"
	"fmt"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, user_id, confirmed_balance, unconfirmed_balance, revision, signature, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func scanAccount(row pgx.Row) (*domain.TokenAccount, error) {
	a := &domain.TokenAccount{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Confirmed, &a.Unconfirmed,
		&a.Revision, &a.Signature, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new token account within a transaction.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.TokenAccount) error {
	query := `INSERT INTO token_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		a.ID, a.UserID, a.Confirmed, a.Unconfirmed,
		a.Revision, a.Signature, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token account: %w", err)
	}
	return nil
}

// GetByUserID fetches an account by owner (without locking).
func (r *AccountRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TokenAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM token_accounts WHERE user_id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token account by user: %w", err)
	}
	return a, nil
}

// LockByUserIDs locks accounts in ascending user id order.
// This MUST be called within a transaction.
func (r *AccountRepo) LockByUserIDs(ctx context.Context, tx pgx.Tx, userIDs []uuid.UUID) ([]*domain.TokenAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM token_accounts
		WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`

	rows, err := tx.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("lock token accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.TokenAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token accounts: %w", err)
	}
	return accounts, nil
}

// Update persists balances, revision and signature within a transaction.
func (r *AccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.TokenAccount) error {
	query := `UPDATE token_accounts
		SET confirmed_balance = $1, unconfirmed_balance = $2, revision = $3, signature = $4, updated_at = $5
		WHERE id = $6`

	tag, err := tx.Exec(ctx, query, a.Confirmed, a.Unconfirmed, a.Revision, a.Signature, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update token account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token account not found: %s", a.ID)
	}
	return nil
}
