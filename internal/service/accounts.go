package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// accountLocker locks and verifies token accounts inside a transaction.
type accountLocker struct {
	repo   ports.AccountRepository
	signer domain.RecordSigner
	log    zerolog.Logger
}

// lock takes the row locks for userIDs in ascending user id order and verifies
// every signature. A user without an account is LEDGER_003.
func (l accountLocker) lock(ctx context.Context, tx pgx.Tx, userIDs ...uuid.UUID) (map[uuid.UUID]*domain.TokenAccount, error) {
	var ls domain.LockSet
	ids := ls.LockAccounts(userIDs...).Accounts()

	rows, err := l.repo.LockByUserIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	out := make(map[uuid.UUID]*domain.TokenAccount, len(rows))
	for _, a := range rows {
		if err := verifyRecord(l.log, l.signer, a); err != nil {
			return nil, err
		}
		out[a.UserID] = a
	}
	for _, id := range ids {
		if out[id] == nil {
			return nil, apperror.ErrAccountNotFound()
		}
	}
	return out, nil
}

// adjust applies delta to the confirmed balance and persists it.
func (l accountLocker) adjust(ctx context.Context, tx pgx.Tx, a *domain.TokenAccount, delta money.Money, now time.Time) error {
	if err := a.AdjustConfirmed(delta, now, l.signer); err != nil {
		return moneyError(err)
	}
	if err := l.repo.Update(ctx, tx, a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// moneyError maps arithmetic failures to ledger policy errors.
func moneyError(err error) error {
	switch {
	case errors.Is(err, money.ErrWouldBeNegative):
		return apperror.ErrInsufficientBalance()
	case errors.Is(err, money.ErrOverflow), errors.Is(err, money.ErrPrecision), errors.Is(err, domain.ErrUnbalancedEntry):
		return apperror.ErrInvalidAmount()
	}
	return err
}
