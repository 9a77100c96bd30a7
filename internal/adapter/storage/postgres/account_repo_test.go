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

func newTestAccount(userID uuid.UUID) *domain.TokenAccount {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.TokenAccount{
		ID:          uuid.New(),
		UserID:      userID,
		Confirmed:   money.MustParse("10"),
		Unconfirmed: money.Zero,
		Revision:    3,
		Signature:   []byte("signature"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func accountRows(accounts ...*domain.TokenAccount) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "confirmed_balance", "unconfirmed_balance",
		"revision", "signature", "created_at", "updated_at",
	})
	for _, a := range accounts {
		rows.AddRow(a.ID, a.UserID, a.Confirmed, a.Unconfirmed, a.Revision, a.Signature, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func TestAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO token_accounts").
		WithArgs(a.ID, a.UserID, a.Confirmed, a.Unconfirmed, a.Revision, a.Signature, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM token_accounts WHERE user_id").
		WithArgs(a.UserID).
		WillReturnRows(accountRows(a))

	result, err := repo.GetByUserID(context.Background(), a.UserID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.True(t, a.Confirmed.Equal(result.Confirmed))
	assert.Equal(t, uint64(3), result.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM token_accounts WHERE user_id").
		WithArgs(userID).
		WillReturnRows(accountRows())

	result, err := repo.GetByUserID(context.Background(), userID)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_LockByUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a, b := newTestAccount(uuid.New()), newTestAccount(uuid.New())
	ids := []uuid.UUID{a.UserID, b.UserID}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM token_accounts .+ ORDER BY user_id FOR UPDATE").
		WithArgs(ids).
		WillReturnRows(accountRows(a, b))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockByUserIDs(context.Background(), tx, ids)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, a.ID, result[0].ID)
	assert.Equal(t, b.ID, result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE token_accounts").
		WithArgs(a.Confirmed, a.Unconfirmed, a.Revision, a.Signature, a.UpdatedAt, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Update(context.Background(), tx, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Update_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE token_accounts").
		WithArgs(a.Confirmed, a.Unconfirmed, a.Revision, a.Signature, a.UpdatedAt, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, a)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token account not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
