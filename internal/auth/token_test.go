package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "7"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	info, err := Inspect(signed(t, exp))
	require.NoError(t, err)
	assert.Equal(t, "7", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))
}

func TestCheck(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"valid", signed(t, now.Add(time.Hour)), nil},
		{"expired", signed(t, now.Add(-time.Minute)), ErrTokenExpired},
		{"no expiry", signed(t, time.Time{}), nil},
		{"opaque token", "not-a-jwt", nil},
		{"empty", "", ErrNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.token, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
