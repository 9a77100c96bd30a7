package postgres

import (
	"context"
	"testing"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings() *domain.IntroSettings {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.IntroSettings{
		UserID:         uuid.New(),
		MinBid:         money.MustParse("0.5"),
		MaxDailyIntros: 4,
		NextCheck:      now.Add(-time.Minute),
		LastCheck:      now.Add(-24 * time.Hour),
		UpdatedAt:      now,
	}
}

func settingsRows(list ...*domain.IntroSettings) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"user_id", "min_bid", "max_daily_intros", "next_check", "last_check", "updated_at"})
	for _, s := range list {
		rows.AddRow(s.UserID, s.MinBid, s.MaxDailyIntros, s.NextCheck, s.LastCheck, s.UpdatedAt)
	}
	return rows
}

func TestIntroSettingsRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIntroSettingsRepo(mock)
	s := newTestSettings()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO intro_settings").
		WithArgs(s.UserID, s.MinBid, s.MaxDailyIntros, s.NextCheck, s.LastCheck, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntroSettingsRepo_LockNextDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIntroSettingsRepo(mock)
	s := newTestSettings()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM intro_settings .+ FOR UPDATE SKIP LOCKED").
		WithArgs(now, []uuid.UUID{}).
		WillReturnRows(settingsRows(s))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	// nil exclude must reach the database as an empty array
	result, err := repo.LockNextDue(context.Background(), tx, now, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, s.UserID, result.UserID)
	assert.Equal(t, uint16(4), result.MaxDailyIntros)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntroSettingsRepo_LockNextDue_NoneDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIntroSettingsRepo(mock)
	now := time.Now().UTC()
	exclude := []uuid.UUID{uuid.New()}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM intro_settings .+ FOR UPDATE SKIP LOCKED").
		WithArgs(now, exclude).
		WillReturnRows(settingsRows())

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockNextDue(context.Background(), tx, now, exclude)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntroSettingsRepo_LockByUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIntroSettingsRepo(mock)
	a, b := newTestSettings(), newTestSettings()
	ids := []uuid.UUID{a.UserID, b.UserID}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM intro_settings .+ ORDER BY user_id FOR UPDATE").
		WithArgs(ids).
		WillReturnRows(settingsRows(a, b))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockByUserIDs(context.Background(), tx, ids)
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntroSettingsRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIntroSettingsRepo(mock)
	s := newTestSettings()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE intro_settings").
		WithArgs(s.MinBid, s.MaxDailyIntros, s.NextCheck, s.LastCheck, s.UpdatedAt, s.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Update(context.Background(), tx, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}
