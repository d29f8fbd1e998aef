package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptPrefixes mark digests written by HashPasswordBcrypt.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashPassword returns the unsalted SHA-256 hex digest stored in the users
// table. Identical passwords produce identical digests; existing rows depend
// on this form, so it is kept as is. Use HashPasswordBcrypt for new accounts
// when the deployment has opted into the bcrypt migration.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPasswordBcrypt returns a salted bcrypt digest. It errors if the
// password is longer than 72 bytes.
func HashPasswordBcrypt(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(digest), nil
}

// ComparePassword reports whether password resolves to digest. SHA-256
// digests are compared in constant time.
func ComparePassword(password, digest string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(digest)) == 1
}

func isBcrypt(digest string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(digest, prefix) {
			return true
		}
	}
	return false
}
