package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func seedAccount(t *testing.T, s *Store, balance string) *domain.TokenAccount {
	t.Helper()
	ctx := context.Background()
	a := &domain.TokenAccount{ID: uuid.New(), UserID: uuid.New(), Confirmed: money.MustParse(balance), CreatedAt: now, UpdatedAt: now}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, NewAccountRepo(s).Create(ctx, tx, a))
	require.NoError(t, tx.Commit(ctx))
	return a
}

func TestStore_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	s := New()
	accounts := NewAccountRepo(s)
	journal := NewJournalRepo(s)
	a := seedAccount(t, s, "10")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	locked, err := accounts.LockByUserIDs(ctx, tx, []uuid.UUID{a.UserID})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	locked[0].Confirmed = money.MustParse("1")
	require.NoError(t, accounts.Update(ctx, tx, locked[0]))
	require.NoError(t, journal.Create(ctx, tx, &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeOut, SourceID: a.UserID}))
	require.NoError(t, tx.Rollback(ctx))

	got, err := accounts.GetByUserID(ctx, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, "10.00000000", got.Confirmed.String())
	assert.Empty(t, s.Journal())
}

func TestStore_RollbackAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.ErrorIs(t, tx.Rollback(ctx), pgx.ErrTxClosed)

	// the store is released
	tx2, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedAccount(t, s, "5")

	got, err := NewAccountRepo(s).GetByUserID(ctx, a.UserID)
	require.NoError(t, err)
	got.Confirmed = money.MustParse("500")

	again, err := NewAccountRepo(s).GetByUserID(ctx, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, "5.00000000", again.Confirmed.String())
}

func TestStore_FailNext(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")
	s.FailNext("accounts.GetByUserID", boom)

	_, err := NewAccountRepo(s).GetByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, boom)

	_, err = NewAccountRepo(s).GetByUserID(ctx, uuid.New())
	assert.NoError(t, err)
}

func TestConversationRepo_DuplicatePair(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := NewConversationRepo(s)
	a, b := uuid.New(), uuid.New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	require.NoError(t, repo.Create(ctx, tx, &domain.Conversation{ID: uuid.New(), SenderID: a, RecipientID: b}))
	err = repo.Create(ctx, tx, &domain.Conversation{ID: uuid.New(), SenderID: b, RecipientID: a})
	assert.ErrorIs(t, err, domain.ErrDuplicatePair)

	found, err := repo.LockByPair(ctx, tx, b, a)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a, found.SenderID)
}

func TestConversationRepo_LockByRecipient_Ordered(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := NewConversationRepo(s)
	recipient := uuid.New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, st := range []domain.BidStatus{domain.BidWon, domain.BidLost, domain.BidWinning, domain.BidLosing} {
		require.NoError(t, repo.Create(ctx, tx, &domain.Conversation{ID: uuid.New(), SenderID: uuid.New(), RecipientID: recipient, BidStatus: st}))
	}

	got, err := repo.LockByRecipient(ctx, tx, recipient, []domain.BidStatus{domain.BidWon, domain.BidWinning, domain.BidLosing})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID.String(), got[i].ID.String())
	}
}

func TestIntroSettingsRepo_LockNextDue(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := NewIntroSettingsRepo(s)

	older := &domain.IntroSettings{UserID: uuid.New(), MaxDailyIntros: 4, NextCheck: now.Add(-2 * time.Hour)}
	newer := &domain.IntroSettings{UserID: uuid.New(), MaxDailyIntros: 4, NextCheck: now.Add(-time.Hour)}
	future := &domain.IntroSettings{UserID: uuid.New(), MaxDailyIntros: 4, NextCheck: now.Add(time.Hour)}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck
	for _, st := range []*domain.IntroSettings{older, newer, future} {
		require.NoError(t, repo.Create(ctx, tx, st))
	}

	got, err := repo.LockNextDue(ctx, tx, now, nil)
	require.NoError(t, err)
	assert.Equal(t, older.UserID, got.UserID)

	got, err = repo.LockNextDue(ctx, tx, now, []uuid.UUID{older.UserID})
	require.NoError(t, err)
	assert.Equal(t, newer.UserID, got.UserID)

	got, err = repo.LockNextDue(ctx, tx, now, []uuid.UUID{older.UserID, newer.UserID})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJournalRepo_ListAndDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := NewJournalRepo(s)
	user := uuid.New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	first := &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeIn, TargetID: user, ExternalTxID: "t1"}
	second := &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeOut, SourceID: user, ExternalTxID: "t1"}
	require.NoError(t, repo.Create(ctx, tx, first))
	require.NoError(t, repo.Create(ctx, tx, second))

	err = repo.Create(ctx, tx, &domain.JournalEntry{ID: uuid.New(), Kind: domain.JournalBridgeIn, TargetID: user, ExternalTxID: "t1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateExternalTx)

	exists, err := repo.ExistsExternalTx(ctx, tx, domain.JournalBridgeIn, "t1")
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := repo.ListByUser(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	list, err = repo.ListByUser(ctx, user, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
