package postgres

import (
	"context"
	"testing"
	"time"

	"intro-auction/internal/core/domain"
	"intro-auction/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry() *domain.JournalEntry {
	convID := uuid.New()
	return &domain.JournalEntry{
		ID:             uuid.New(),
		Kind:           domain.JournalUserToUser,
		SourceID:       uuid.New(),
		TargetID:       uuid.New(),
		Amount:         money.MustParse("2"),
		Fee:            money.MustParse("0.5"),
		Net:            money.MustParse("1.5"),
		ConversationID: &convID,
		Reason:         domain.ReasonSettlement,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		Signature:      []byte("signature"),
	}
}

func TestJournalRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	e := newTestEntry()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO journal_entries").
		WithArgs(e.ID, e.Kind, e.SourceID, e.TargetID, e.Amount, e.Fee, e.Net,
			e.ConversationID, e.Reason, e.DestAddress, e.ExternalTxID, e.CreatedAt, e.Signature).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_Create_DuplicateExternalTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO journal_entries").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "journal_entries_external_tx_key"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, newTestEntry())
	assert.ErrorIs(t, err, domain.ErrDuplicateExternalTx)
}

func TestJournalRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	e := newTestEntry()

	rows := pgxmock.NewRows([]string{
		"id", "kind", "source_id", "target_id", "amount", "fee", "net", "conversation_id",
		"reason", "dest_address", "external_txid", "created_at", "signature",
	}).AddRow(e.ID, e.Kind, e.SourceID, e.TargetID, e.Amount, e.Fee, e.Net, e.ConversationID,
		e.Reason, e.DestAddress, e.ExternalTxID, e.CreatedAt, e.Signature)

	mock.ExpectQuery("SELECT .+ FROM journal_entries .+ ORDER BY created_at DESC").
		WithArgs(e.SourceID, 50).
		WillReturnRows(rows)

	result, err := repo.ListByUser(context.Background(), e.SourceID, 50)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, e.ID, result[0].ID)
	assert.True(t, result[0].Net.Equal(money.MustParse("1.5")))
	require.NotNil(t, result[0].ConversationID)
	assert.Equal(t, *e.ConversationID, *result[0].ConversationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_ExistsExternalTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(domain.JournalBridgeIn, "0xabc").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	exists, err := repo.ExistsExternalTx(context.Background(), tx, domain.JournalBridgeIn, "0xabc")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
