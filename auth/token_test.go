package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestEncodeToken_Layout(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	token, err := EncodeToken(7, "n@x.com", RoleNotary, expiry, []byte("s3cret"))
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 5)
	assert.Equal(t, []string{"7", "n@x.com", "notary", "20240108T100000"}, parts[:4])
	assert.Len(t, parts[4], 64)
	assert.Equal(t, strings.ToLower(parts[4]), parts[4])

	again, err := EncodeToken(7, "n@x.com", RoleNotary, expiry, []byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, token, again, "encoding is deterministic")
}

func TestEncodeToken_RejectsSeparatorInFields(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(time.Hour)
	_, err := EncodeToken(1, "a:b@x.com", RoleClient, expiry, testSecret)
	assert.ErrorIs(t, err, ErrFieldDelimiter)

	_, err = EncodeToken(1, "a@x.com", Role("no:tary"), expiry, testSecret)
	assert.ErrorIs(t, err, ErrFieldDelimiter)
}

func TestDecodeToken(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2030, 5, 1, 12, 30, 15, 123456000, time.UTC)
	token, err := EncodeToken(42, "a@b.kz", RoleAdmin, expiry, testSecret)
	require.NoError(t, err)

	claims, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.kz", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, expiry.Equal(claims.Expiry))
	assert.Equal(t, Principal{UserID: 42, Email: "a@b.kz", Role: RoleAdmin}, claims.Principal())
}

func TestDecodeToken_Malformed(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":          "",
		"four parts":     "7:n@x.com:notary:20240108T100000",
		"six parts":      "7:n@x.com:notary:20240108T100000:abcd:extra",
		"extended time":  "7:n@x.com:notary:2024-01-08T10:00:00:abcd",
		"non-numeric id": "seven:n@x.com:notary:20240108T100000:abcd",
		"bad expiry":     "7:n@x.com:notary:tomorrow:abcd",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeToken(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestEncodeDecode_RandomIdentities(t *testing.T) {
	t.Parallel()

	faker := gofakeit.New(7)
	svc := NewService(nil, nil, string(testSecret))
	roles := []Role{RoleClient, RoleNotary, RoleAdmin}

	for i := 0; i < 50; i++ {
		id := int64(faker.Uint16()) + 1
		email := faker.Email()
		role := roles[i%len(roles)]

		token, err := EncodeToken(id, email, role, time.Now().Add(time.Hour), testSecret)
		require.NoError(t, err)

		p, err := svc.VerifyToken(token)
		require.NoError(t, err, token)
		assert.Equal(t, Principal{UserID: id, Email: email, Role: role}, p)
	}
}
