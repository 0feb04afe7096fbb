package session

import (
	"testing"
	"time"

	"furnistore/storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestJWTDecoder(t *testing.T) {
	d := NewJWTDecoder()

	token := signToken(t, jwt.MapClaims{
		"id":    7,
		"email": "ana@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := d.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: 7, Email: "ana@example.com", Role: domain.RoleAdmin}, user)
}

func TestJWTDecoder_SubjectFallbackAndDefaultRole(t *testing.T) {
	d := NewJWTDecoder()

	user, err := d.Decode(signToken(t, jwt.MapClaims{"sub": "12", "email": "bo@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, int64(12), user.ID)
	assert.Equal(t, domain.RoleBuyer, user.Role)

	user, err = d.Decode(signToken(t, jwt.MapClaims{"sub": 13, "email": "bo@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, int64(13), user.ID)
}

func TestJWTDecoder_Rejects(t *testing.T) {
	d := NewJWTDecoder()

	tests := map[string]string{
		"garbage":  "not-a-token",
		"empty":    "",
		"no id":    signToken(t, jwt.MapClaims{"email": "x@example.com"}),
		"no email": signToken(t, jwt.MapClaims{"id": 1}),
		"expired": signToken(t, jwt.MapClaims{
			"id": 1, "email": "x@example.com", "exp": time.Now().Add(-time.Minute).Unix(),
		}),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := d.Decode(token)
			assert.Error(t, err)
		})
	}
}

func TestJWTDecoder_ExpiredSentinel(t *testing.T) {
	d := NewJWTDecoder()
	d.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	token := signToken(t, jwt.MapClaims{
		"id": 1, "email": "x@example.com",
		"exp": time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
	})
	_, err := d.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
