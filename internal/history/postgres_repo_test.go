package history

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepo(mock, time.Second), mock
}

func TestPostgresRepo_Recent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    []string
		wantErr bool
	}{
		{
			name: "newest first",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \$2`).
					WithArgs("u1", 5).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "query", "created_at"}).
						AddRow(int64(2), "u1", "emma", now).
						AddRow(int64(1), "u1", "dune", now.Add(-time.Minute)))
			},
			want: []string{"emma", "dune"},
		},
		{
			name: "query error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM search_history`).WithArgs("u1", 5).WillReturnError(errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setup(mock)

			got, err := repo.Recent(context.Background(), "u1", 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, queries(got))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepo_InsertAndTrim(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO search_history`).
		WithArgs("u1", "dune", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT id\s+FROM search_history`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(2)).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM search_history\s+WHERE user_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs("u1", []int64{1}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, "u1", "dune", at))
	ids, err := repo.IDsNewestFirst(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids)
	require.NoError(t, repo.DeleteByIDs(ctx, "u1", ids[2:]))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteByIDs_EmptyIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)
	require.NoError(t, repo.DeleteByIDs(context.Background(), "u1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Count(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM search_history WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
