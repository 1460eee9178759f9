package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeegr/singular/internal/pkg/apperrors"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testClaims(issuer string, expiresIn time.Duration) Claims {
	return Claims{
		ActorID:   "42",
		ActorKind: "consumer",
		Handle:    "gopher",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestValidateAndExtractClaims(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: testSecret, TokenIssuer: "singular.app"})

	t.Run("accepts a well-formed token", func(t *testing.T) {
		token := signToken(t, testSecret, testClaims("singular.app", time.Hour))

		claims, err := svc.ValidateAndExtractClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.ActorID)
		assert.Equal(t, "consumer", claims.ActorKind)
		assert.Equal(t, "gopher", claims.Handle)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		token := signToken(t, testSecret, testClaims("singular.app", -time.Minute))

		_, err := svc.ValidateAndExtractClaims(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		// The middleware matches on the apperrors sentinel
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("rejects a wrong signature", func(t *testing.T) {
		token := signToken(t, "some-other-secret", testClaims("singular.app", time.Hour))

		_, err := svc.ValidateAndExtractClaims(token)
		assert.Error(t, err)
	})

	t.Run("rejects a wrong issuer", func(t *testing.T) {
		token := signToken(t, testSecret, testClaims("someone-else.app", time.Hour))

		_, err := svc.ValidateAndExtractClaims(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens without an identity", func(t *testing.T) {
		claims := testClaims("singular.app", time.Hour)
		claims.ActorID = ""
		token := signToken(t, testSecret, claims)

		_, err := svc.ValidateAndExtractClaims(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects the empty string", func(t *testing.T) {
		_, err := svc.ValidateAndExtractClaims("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	// A bare token is tolerated
	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
