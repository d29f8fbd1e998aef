package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notaryregistry/isotime"
)

// Tokens are "{user_id}:{email}:{role}:{expiry}:{hex_signature}" where the
// signature is HMAC-SHA256 over the first four fields joined by colons.
const (
	tokenSeparator = ":"
	tokenParts     = 5
)

var (
	// ErrMalformedToken signals a token that does not have the expected structure.
	ErrMalformedToken = errors.New("auth: malformed token")
	// ErrFieldDelimiter signals a claim that contains the token separator.
	ErrFieldDelimiter = errors.New("auth: token field contains ':'")
)

// TokenClaims is the decoded, not yet verified, content of a token.
type TokenClaims struct {
	UserID    int64
	Email     string
	Role      Role
	Expiry    time.Time
	Signature string

	// payload is the signed prefix exactly as it appeared on the wire.
	payload string
}

// Principal returns the identity carried by the claims.
func (c TokenClaims) Principal() Principal {
	return Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// EncodeToken builds a signed token for the given identity.
func EncodeToken(userID int64, email string, role Role, expiry time.Time, secret []byte) (string, error) {
	if strings.Contains(email, tokenSeparator) || strings.Contains(string(role), tokenSeparator) {
		return "", ErrFieldDelimiter
	}

	payload := strings.Join([]string{
		strconv.FormatInt(userID, 10),
		email,
		string(role),
		isotime.FormatBasic(expiry),
	}, tokenSeparator)

	signature, err := signPayload(payload, secret)
	if err != nil {
		return "", err
	}
	return payload + tokenSeparator + signature, nil
}

// DecodeToken splits a token into its claims without checking the signature
// or the expiry.
func DecodeToken(token string) (TokenClaims, error) {
	parts := strings.Split(token, tokenSeparator)
	if len(parts) != tokenParts {
		return TokenClaims{}, fmt.Errorf("%w: expected %d parts, got %d", ErrMalformedToken, tokenParts, len(parts))
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: user id %q", ErrMalformedToken, parts[0])
	}

	expiry, err := isotime.ParseBasic(parts[3])
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: expiry %q", ErrMalformedToken, parts[3])
	}

	return TokenClaims{
		UserID:    userID,
		Email:     parts[1],
		Role:      Role(parts[2]),
		Expiry:    expiry,
		Signature: parts[4],
		payload:   strings.Join(parts[:4], tokenSeparator),
	}, nil
}

// signPayload returns the lowercase hex HMAC-SHA256 of payload.
func signPayload(payload string, secret []byte) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(payload, secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return hex.EncodeToString(sig), nil
}
