package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryregistry/test/pgxfake"
)

func TestPGRepository_GetUserByEmail(t *testing.T) {
	t.Parallel()

	phone := "+7 700 000 0000"
	fake := &pgxfake.DB{
		QueryRowFunc: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return pgxfake.NewRow(int64(5), "n@x.com", "Nurlan", "digest", "notary", phone, nil)
		},
	}
	repo := NewRepository(fake)

	user, err := repo.GetUserByEmail(context.Background(), "n@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, RoleNotary, user.Role)
	require.NotNil(t, user.Phone)
	assert.Equal(t, phone, *user.Phone)
	assert.Nil(t, user.Region)

	require.Len(t, fake.Queries, 1)
	assert.Equal(t, []any{"n@x.com"}, fake.Queries[0].Args)
}

func TestPGRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&pgxfake.DB{})

	_, err := repo.GetUserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPGRepository_QueryFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	repo := NewRepository(&pgxfake.DB{
		QueryRowFunc: func(context.Context, string, ...any) pgx.Row { return &pgxfake.Row{Err: boom} },
	})

	_, err := repo.GetUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestPGRepository_CreateUser(t *testing.T) {
	t.Parallel()

	fake := &pgxfake.DB{
		QueryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
			return pgxfake.NewRow(int64(1), args[0], args[1], args[2], string(args[3].(Role)), nil, nil)
		},
	}
	repo := NewRepository(fake)

	user, err := repo.CreateUser(context.Background(), CreateUserParams{
		Email:        "new@x.com",
		FullName:     "New Notary",
		PasswordHash: HashPassword("pw"),
		Role:         RoleNotary,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, RoleNotary, user.Role)

	_, err = repo.CreateUser(context.Background(), CreateUserParams{Email: "a:b@x.com", Role: RoleClient})
	assert.ErrorIs(t, err, ErrFieldDelimiter)
	assert.Len(t, fake.Queries, 1)
}

func TestPGRepository_CreateUserDuplicate(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&pgxfake.DB{
		QueryRowFunc: func(context.Context, string, ...any) pgx.Row {
			return &pgxfake.Row{Err: &pgconn.PgError{Code: "23505"}}
		},
	})

	_, err := repo.CreateUser(context.Background(), CreateUserParams{Email: "dup@x.com", Role: RoleClient})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
