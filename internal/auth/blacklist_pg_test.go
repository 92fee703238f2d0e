package auth

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistPG(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewBlacklistPG(mock, time.Second)
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO token_blacklist`).WithArgs("jti-1", "u1", exp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("jti-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM token_blacklist WHERE expires_at < now\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	require.NoError(t, repo.Add(context.Background(), "jti-1", "u1", exp))

	ok, err := repo.IsBlacklisted(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
