package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryregistry/test/pgxfake"
)

func TestRepository_Append(t *testing.T) {
	t.Parallel()

	fake := &pgxfake.DB{}
	docID := int64(9)

	err := NewRepository(fake).Append(context.Background(), Entry{
		UserID:      3,
		ActionType:  ActionRegister,
		Description: "Registered document 9N-0101/2024",
		DocumentID:  &docID,
	})
	require.NoError(t, err)

	require.Len(t, fake.Execs, 1)
	call := fake.Execs[0]
	assert.Contains(t, call.SQL, "INSERT INTO activity_log")
	assert.Equal(t, []any{int64(3), ActionRegister, "Registered document 9N-0101/2024", &docID}, call.Args)
}

func TestRepository_AppendTxUsesGivenQuerier(t *testing.T) {
	t.Parallel()

	pool := &pgxfake.DB{}
	tx := &pgxfake.DB{}

	err := NewRepository(pool).AppendTx(context.Background(), tx, Entry{UserID: 1, ActionType: ActionLogin, Description: "x"})
	require.NoError(t, err)
	assert.Empty(t, pool.Execs)
	assert.Len(t, tx.Execs, 1)
}

func TestRepository_AppendFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("foreign key violation")
	fake := &pgxfake.DB{}
	fake.ExecFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, boom
	}

	err := NewRepository(fake).Append(context.Background(), Entry{UserID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestRepository_ListForUser(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	fake := &pgxfake.DB{
		QueryFunc: func(context.Context, string, ...any) (pgx.Rows, error) {
			return pgxfake.NewRows(
				[]any{int64(2), ActionRegister, "Registered document 1N-0308/2024", at, "1N-0308/2024"},
				[]any{int64(1), ActionLogin, "User Alma logged in", at.Add(-time.Minute), nil},
			), nil
		},
	}

	records, err := NewRepository(fake).ListForUser(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].DocumentNumber)
	assert.Equal(t, "1N-0308/2024", *records[0].DocumentNumber)
	assert.Nil(t, records[1].DocumentNumber)

	call := fake.Queries[0]
	assert.True(t, strings.Contains(call.SQL, "LEFT JOIN documents"))
	assert.Equal(t, []any{int64(3), 10}, call.Args)
}

func TestRepository_ListForUserClampsLimit(t *testing.T) {
	t.Parallel()

	for _, limit := range []int{0, -1, 500} {
		fake := &pgxfake.DB{}
		records, err := NewRepository(fake).ListForUser(context.Background(), 1, limit)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, DefaultHistoryLimit, fake.Queries[0].Args[1], "limit %d", limit)
	}
}
