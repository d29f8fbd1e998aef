package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notaryregistry/activity"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials signals wrong email or password. Both cases share
	// this error so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken signals a token that failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrBadSignature signals a token whose signature does not match its claims.
	ErrBadSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	// ErrTokenExpired signals a correctly signed token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// AuditSink records successful logins.
type AuditSink interface {
	Append(ctx context.Context, e activity.Entry) error
}

// Service issues and verifies tokens.
type Service struct {
	repo     Repository
	audit    AuditSink
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token     string
	User      User
	ExpiresAt time.Time
}

// NewService creates a new authentication service. audit may be nil.
func NewService(repo Repository, audit AuditSink, secret string) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		secret:   []byte(secret),
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithTokenTTL(ttl time.Duration) *Service {
	s.tokenTTL = ttl
	return s
}

func (s *Service) WithLogger(logger *zap.Logger) *Service {
	s.logger = logger
	return s
}

// Login authenticates a user and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !ComparePassword(req.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	expiresAt := s.now().UTC().Add(s.tokenTTL)
	token, err := EncodeToken(user.ID, user.Email, user.Role, expiresAt, s.secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: generate token: %w", err)
	}

	s.recordLogin(ctx, user)

	return LoginResult{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// recordLogin is best-effort: a failed append does not undo the login.
func (s *Service) recordLogin(ctx context.Context, user User) {
	if s.audit == nil {
		return
	}
	err := s.audit.Append(ctx, activity.Entry{
		UserID:      user.ID,
		ActionType:  activity.ActionLogin,
		Description: fmt.Sprintf("User %s logged in", user.FullName),
	})
	if err != nil {
		s.logger.Warn("login audit append failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken checks the signature and expiry of token and returns the
// identity it carries. Every failure wraps ErrInvalidToken.
func (s *Service) VerifyToken(token string) (Principal, error) {
	claims, err := DecodeToken(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	expected, err := signPayload(claims.payload, s.secret)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Signature), []byte(expected)) != 1 {
		return Principal{}, ErrBadSignature
	}

	if claims.Expiry.Before(s.now().UTC()) {
		return Principal{}, ErrTokenExpired
	}

	return claims.Principal(), nil
}
