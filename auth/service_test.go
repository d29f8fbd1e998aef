package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"notaryregistry/activity"
)

var issuedAt = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_Login(t *testing.T) {
	repo := newFakeRepository()
	notary := repo.add(User{Email: "a@b.com", FullName: "Aigerim Notary", PasswordHash: HashPassword("correct"), Role: RoleNotary})
	audit := &fakeAudit{}
	svc := NewService(repo, audit, "test-secret").WithClock(fixedClock(issuedAt))

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "correct"})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}
	if resp.User.ID != notary.ID {
		t.Fatalf("login: expected user id %d got %d", notary.ID, resp.User.ID)
	}
	if want := issuedAt.Add(DefaultTokenTTL); !resp.ExpiresAt.Equal(want) {
		t.Fatalf("login: expected expiry %v got %v", want, resp.ExpiresAt)
	}

	claims, err := DecodeToken(resp.Token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Email != "a@b.com" || claims.Role != RoleNotary {
		t.Fatalf("token carries %q/%q, want stored record", claims.Email, claims.Role)
	}

	p, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if p != notary.Principal() {
		t.Fatalf("verify token: expected %+v got %+v", notary.Principal(), p)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.ActionType != activity.ActionLogin || entry.UserID != notary.ID || entry.DocumentID != nil {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
	if entry.Description != "User Aigerim Notary logged in" {
		t.Fatalf("unexpected audit description %q", entry.Description)
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	repo := newFakeRepository()
	repo.add(User{Email: "a@b.com", PasswordHash: HashPassword("correct"), Role: RoleClient})
	audit := &fakeAudit{}
	svc := NewService(repo, audit, "test-secret")

	_, wrongPassword := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong"})
	_, unknownEmail := svc.Login(context.Background(), LoginRequest{Email: "nobody@b.com", Password: "x"})

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if wrongPassword != unknownEmail {
		t.Fatalf("wrong password and unknown email must fail identically: %v vs %v", wrongPassword, unknownEmail)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("failed logins must not be audited, got %d entries", len(audit.entries))
	}
}

func TestService_LoginStoreFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, nil, "test-secret")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "x"})
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestService_LoginAuditFailureIsLogged(t *testing.T) {
	repo := newFakeRepository()
	repo.add(User{Email: "a@b.com", PasswordHash: HashPassword("correct"), Role: RoleClient})
	core, logs := observer.New(zap.WarnLevel)
	audit := &fakeAudit{err: errors.New("disk full")}
	svc := NewService(repo, audit, "test-secret").WithLogger(zap.New(core))

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "correct"}); err != nil {
		t.Fatalf("login must survive audit failure, got %v", err)
	}
	if logs.FilterMessage("login audit append failed").Len() != 1 {
		t.Fatalf("expected audit failure warning, got %v", logs.All())
	}
}

func TestService_VerifyTokenExpiryBoundary(t *testing.T) {
	svc := NewService(nil, nil, "test-secret").WithClock(fixedClock(issuedAt))
	secret := []byte("test-secret")

	tests := []struct {
		name    string
		expiry  time.Time
		wantErr error
	}{
		{"one second ahead", issuedAt.Add(time.Second), nil},
		{"exactly now", issuedAt, nil},
		{"one second ago", issuedAt.Add(-time.Second), ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := EncodeToken(7, "n@x.com", RoleNotary, tt.expiry, secret)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			_, err = svc.VerifyToken(token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expiry must wrap ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestService_VerifyTokenSecretScenario(t *testing.T) {
	token, err := EncodeToken(7, "n@x.com", RoleNotary, issuedAt.Add(DefaultTokenTTL), []byte("s3cret"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dayLater := NewService(nil, nil, "s3cret").WithClock(fixedClock(issuedAt.Add(24 * time.Hour)))
	p, err := dayLater.VerifyToken(token)
	if err != nil {
		t.Fatalf("T+1d: %v", err)
	}
	if p != (Principal{UserID: 7, Email: "n@x.com", Role: RoleNotary}) {
		t.Fatalf("T+1d: unexpected principal %+v", p)
	}

	weekLater := NewService(nil, nil, "s3cret").WithClock(fixedClock(issuedAt.Add(8 * 24 * time.Hour)))
	if _, err := weekLater.VerifyToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("T+8d: expected ErrTokenExpired, got %v", err)
	}

	otherSecret := NewService(nil, nil, "other").WithClock(fixedClock(issuedAt.Add(24 * time.Hour)))
	if _, err := otherSecret.VerifyToken(token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("other secret: expected ErrBadSignature, got %v", err)
	}
}

func TestService_VerifyTokenTamper(t *testing.T) {
	svc := NewService(nil, nil, "test-secret").WithClock(fixedClock(issuedAt))
	token, err := EncodeToken(7, "n@x.com", RoleNotary, issuedAt.Add(time.Hour), []byte("test-secret"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for i := range token {
		if token[i] == ':' {
			continue
		}
		tampered := token[:i] + string(flip(token[i])) + token[i+1:]
		if _, err := svc.VerifyToken(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("flipping byte %d (%q): expected ErrInvalidToken, got %v", i, tampered, err)
		}
	}
}

func TestService_VerifyTokenMalformed(t *testing.T) {
	svc := NewService(nil, nil, "test-secret")

	for _, token := range []string{"", "a:b:c:d", "a:b:c:d:e:f", "x:n@x.com:notary:20240101T100000:ff"} {
		_, err := svc.VerifyToken(token)
		if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("%q: expected malformed invalid token, got %v", token, err)
		}
	}
}

func TestService_GetUserByID(t *testing.T) {
	repo := newFakeRepository()
	stored := repo.add(User{Email: "a@b.com", FullName: "A", Role: RoleAdmin})
	svc := NewService(repo, nil, "test-secret")

	user, err := svc.GetUserByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Email != stored.Email {
		t.Fatalf("expected %q got %q", stored.Email, user.Email)
	}

	if _, err := svc.GetUserByID(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// flip swaps c for a different character of the same class so the token keeps
// its shape.
func flip(c byte) byte {
	switch {
	case c >= '0' && c <= '8', c >= 'a' && c <= 'y', c >= 'A' && c <= 'Y':
		return c + 1
	case c == '9':
		return '0'
	case c == 'z':
		return 'a'
	case c == 'Z':
		return 'A'
	default:
		return 'q'
	}
}

type fakeAudit struct {
	entries []activity.Entry
	err     error
}

func (f *fakeAudit) Append(_ context.Context, e activity.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

type fakeRepository struct {
	usersByEmail map[string]User
	usersByID    map[int64]User
	nextID       int64
	err          error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		usersByEmail: make(map[string]User),
		usersByID:    make(map[int64]User),
		nextID:       1,
	}
}

func (f *fakeRepository) add(user User) User {
	user.ID = f.nextID
	f.nextID++
	f.usersByEmail[strings.ToLower(user.Email)] = user
	f.usersByID[user.ID] = user
	return user
}

func (f *fakeRepository) GetUserByEmail(_ context.Context, email string) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	user, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) GetUserByID(_ context.Context, userID int64) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}
