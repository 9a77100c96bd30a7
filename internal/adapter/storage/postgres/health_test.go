package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaQuery = "SELECT version, dirty FROM schema_migrations"

func TestHealthCheck_Ping(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(pgxmock.PgxPoolIface)
		wantErr string
	}{
		{
			name: "clean",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(schemaQuery).WillReturnRows(pgxmock.NewRows([]string{"version", "dirty"}).AddRow(int64(1), false))
			},
		},
		{
			name: "dirty",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(schemaQuery).WillReturnRows(pgxmock.NewRows([]string{"version", "dirty"}).AddRow(int64(1), true))
			},
			wantErr: "migration 1 is dirty",
		},
		{
			name: "never migrated",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(schemaQuery).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: "no migrations applied",
		},
		{
			name: "unreachable",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(schemaQuery).WillReturnError(errors.New("connection refused"))
			},
			wantErr: "connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.expect(mock)

			h := NewHealthCheck(mock)
			err = h.Ping(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			assert.Equal(t, "postgresql", h.Name())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
