package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"notaryregistry/db"
)

var (
	// ErrUserNotFound signals that the user does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already exists")
)

// Repository is the credential store consulted by the Service.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID int64) (User, error)
}

// CreateUserParams contains write parameters for creating users.
type CreateUserParams struct {
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Phone        *string
	Region       *string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository creates a PostgreSQL-backed auth repository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{db: q}
}

// CreateUser inserts a credential record. The password must already be hashed.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if strings.Contains(params.Email, tokenSeparator) {
		return User{}, ErrFieldDelimiter
	}

	const insertSQL = `
		INSERT INTO users (email, full_name, password_hash, role, phone, region)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, full_name, password_hash, role, phone, region
	`

	user, err := scanUser(r.db.QueryRow(ctx, insertSQL,
		params.Email, params.FullName, params.PasswordHash, params.Role, params.Phone, params.Region))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by exact email match.
func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const selectSQL = `
		SELECT id, email, full_name, password_hash, role, phone, region
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, userID int64) (User, error) {
	const selectSQL = `
		SELECT id, email, full_name, password_hash, role, phone, region
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.Region,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
