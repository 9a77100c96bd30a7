package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/metrics"
	"intro-auction/pkg/apperror"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// maxTxAttempts bounds retries of a whole transaction after a lock conflict.
const maxTxAttempts = 3

// isRetryable reports whether the store aborted the transaction because of a
// lock conflict rather than anything the transaction did.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure, pgerrcode.LockNotAvailable:
		return true
	}
	return false
}

// runInTx runs fn in a fresh transaction, retrying the whole transaction on
// deadlock, serialization failure or lock-not-available. fn must be safe to
// rerun from scratch. Errors that are not *apperror.AppError become SYS_001.
func runInTx(ctx context.Context, db ports.DBTransactor, log zerolog.Logger, op string, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = runOnce(ctx, db, fn)
		if err == nil || !isRetryable(err) {
			break
		}
		metrics.RecordTxRetry(op)
		log.Warn().Err(err).Str("operation", op).Int("attempt", attempt).Msg("transaction aborted by lock conflict")
		if attempt == maxTxAttempts {
			return apperror.ErrLockTimeout(err)
		}
	}
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}

func runOnce(ctx context.Context, db ports.DBTransactor, fn func(tx pgx.Tx) error) error {
	dbTx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := fn(dbTx); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// verifyRecord checks rec before it is trusted for a money-moving decision.
// A mismatch is reported on the operator channel and aborts the operation.
func verifyRecord(log zerolog.Logger, signer domain.RecordSigner, rec domain.SignedRecord) error {
	if err := domain.VerifyRecord(rec, signer); err != nil {
		ref := rec.RecordRef()
		kind, _, _ := strings.Cut(ref, ":")
		metrics.RecordIntegrityFailure(kind)
		log.Error().
			Str("channel", "operator").
			Str("record", ref).
			Msg("record signature mismatch, aborting operation")
		return apperror.ErrSignatureMismatch(ref)
	}
	return nil
}

// txNow reads the clock once per transaction at storage precision.
func txNow(clock ports.Clock) time.Time {
	return clock.Now().UTC().Truncate(time.Microsecond)
}
