package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"intro-auction/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const introSettingsColumns = `user_id, min_bid, max_daily_intros, next_check, last_check, updated_at`

// IntroSettingsRepo implements ports.IntroSettingsRepository.
type IntroSettingsRepo struct {
	pool Pool
}

// NewIntroSettingsRepo creates a new IntroSettingsRepo.
func NewIntroSettingsRepo(pool Pool) *IntroSettingsRepo {
	return &IntroSettingsRepo{pool: pool}
}

func scanIntroSettings(row pgx.Row) (*domain.IntroSettings, error) {
	s := &domain.IntroSettings{}
	err := row.Scan(&s.UserID, &s.MinBid, &s.MaxDailyIntros, &s.NextCheck, &s.LastCheck, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a user's settings within a transaction.
func (r *IntroSettingsRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.IntroSettings) error {
	query := `INSERT INTO intro_settings (` + introSettingsColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, s.UserID, s.MinBid, s.MaxDailyIntros, s.NextCheck, s.LastCheck, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert intro settings: %w", err)
	}
	return nil
}

// GetByUserID fetches settings without locking.
func (r *IntroSettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.IntroSettings, error) {
	query := `SELECT ` + introSettingsColumns + ` FROM intro_settings WHERE user_id = $1`

	s, err := scanIntroSettings(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get intro settings: %w", err)
	}
	return s, nil
}

// LockByUserIDs locks settings rows in ascending user id order.
// This MUST be called within a transaction.
func (r *IntroSettingsRepo) LockByUserIDs(ctx context.Context, tx pgx.Tx, userIDs []uuid.UUID) ([]*domain.IntroSettings, error) {
	query := `SELECT ` + introSettingsColumns + ` FROM intro_settings
		WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`

	rows, err := tx.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("lock intro settings: %w", err)
	}
	defer rows.Close()

	var out []*domain.IntroSettings
	for rows.Next() {
		s, err := scanIntroSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intro settings: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intro settings: %w", err)
	}
	return out, nil
}

// LockNextDue claims the most overdue recipient not held by another reaper.
func (r *IntroSettingsRepo) LockNextDue(ctx context.Context, tx pgx.Tx, now time.Time, exclude []uuid.UUID) (*domain.IntroSettings, error) {
	query := `SELECT ` + introSettingsColumns + ` FROM intro_settings
		WHERE next_check <= $1 AND NOT (user_id = ANY($2))
		ORDER BY next_check, user_id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`

	// A NULL array would make the NOT ANY predicate NULL and hide every row.
	if exclude == nil {
		exclude = []uuid.UUID{}
	}

	s, err := scanIntroSettings(tx.QueryRow(ctx, query, now, exclude))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock next due intro settings: %w", err)
	}
	return s, nil
}

// Update persists the mutable columns within a transaction.
func (r *IntroSettingsRepo) Update(ctx context.Context, tx pgx.Tx, s *domain.IntroSettings) error {
	query := `UPDATE intro_settings
		SET min_bid = $1, max_daily_intros = $2, next_check = $3, last_check = $4, updated_at = $5
		WHERE user_id = $6`

	tag, err := tx.Exec(ctx, query, s.MinBid, s.MaxDailyIntros, s.NextCheck, s.LastCheck, s.UpdatedAt, s.UserID)
	if err != nil {
		return fmt.Errorf("update intro settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("intro settings not found: %s", s.UserID)
	}
	return nil
}
