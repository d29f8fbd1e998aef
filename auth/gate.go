package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// HeaderName carries the raw token on every protected request.
const HeaderName = "X-Auth-Token"

var (
	// ErrUnauthenticated is the boundary-level failure for any missing or
	// rejected token.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrNoToken signals a request without a token header.
	ErrNoToken = fmt.Errorf("%w: no token provided", ErrUnauthenticated)
	// ErrForbidden signals an authenticated principal lacking the required role.
	ErrForbidden = errors.New("auth: forbidden")
)

// TokenVerifier is satisfied by *Service.
type TokenVerifier interface {
	VerifyToken(token string) (Principal, error)
}

// Gate is the authorization check shared by every protected handler.
type Gate struct {
	verifier TokenVerifier
}

// NewGate builds a Gate around verifier.
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authorize verifies the raw header value. Failures wrap ErrUnauthenticated
// and keep the verification cause for logging.
func (g *Gate) Authorize(headerValue string) (Principal, error) {
	if headerValue == "" {
		return Principal{}, ErrNoToken
	}
	p, err := g.verifier.VerifyToken(headerValue)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return p, nil
}

// RequireRole fails with ErrForbidden unless p holds one of roles.
func RequireRole(p Principal, roles ...Role) error {
	if !p.Role.In(roles...) {
		return fmt.Errorf("%w: role %q", ErrForbidden, p.Role)
	}
	return nil
}

// StatusCode maps an authentication or authorization failure to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
