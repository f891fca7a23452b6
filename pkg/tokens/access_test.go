package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims AccessClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAccessClaimsFromToken_Valid(t *testing.T) {
	t.Parallel()

	tok := sign(t, jwt.SigningMethodHS256, secret, AccessClaims{
		Role:     "vendor",
		Email:    "shop@example.com",
		VendorID: "b3c1a1c2-1d1e-4f7a-9a55-0b7f3a3f0c11",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1a5b7f0e-95f6-4b53-9c40-7c1d2f0c9a11",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "vendor", claims.Role)
	assert.Equal(t, "shop@example.com", claims.Email)
	assert.Equal(t, "1a5b7f0e-95f6-4b53-9c40-7c1d2f0c9a11", claims.Subject)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired := sign(t, jwt.SigningMethodHS256, secret, AccessClaims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), AccessClaims{Role: "admin"})
	wrongAlg := sign(t, jwt.SigningMethodHS512, secret, AccessClaims{Role: "admin"})

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong key", token: wrongKey},
		{name: "wrong alg", token: wrongAlg},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := AccessClaimsFromToken(tt.token, secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
