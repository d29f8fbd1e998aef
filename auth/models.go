package auth

import (
	"errors"
	"fmt"
	"slices"
)

// Role names the permission level carried inside a token.
type Role string

const (
	RoleClient Role = "client"
	RoleNotary Role = "notary"
	RoleAdmin  Role = "admin"
)

// DocumentWriters may register new documents.
var DocumentWriters = []Role{RoleNotary, RoleAdmin}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// User is the domain representation of a credential record.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Phone        *string
	Region       *string
}

// Principal is the identity recovered from a verified token.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

// Principal returns the identity a token issued for u would carry.
func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrUnknownRole signals a role name outside the known set.
var ErrUnknownRole = errors.New("auth: unknown role")

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.In(RoleClient, RoleNotary, RoleAdmin) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
