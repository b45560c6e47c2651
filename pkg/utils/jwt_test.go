package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("access-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestDecodeJWT(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "valid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"id": id.String(), "exp": time.Now().Add(time.Minute).Unix()})
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"id": id.String(), "exp": time.Now().Add(-time.Minute).Unix()})
			},
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"id": id.String()})
			},
			wantErr: true,
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"id": id.String()})
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not.a.token" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := DecodeJWT(tt.token(t), secret)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			got, err := UserIDFromClaims(claims)
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestUserIDFromClaims(t *testing.T) {
	t.Parallel()

	_, err := UserIDFromClaims(jwt.MapClaims{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = UserIDFromClaims(jwt.MapClaims{"id": 42})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = UserIDFromClaims(jwt.MapClaims{"id": "not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
