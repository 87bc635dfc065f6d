package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "docverify/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var userID = uuid.New()
var sessionID = uuid.New()
var expiresIn = time.Hour

func requireUnauthorized(t *testing.T, err error, msg string) {
	t.Helper()
	de, ok := dErrors.As(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, dErrors.CodeUnauthorized, de.Code)
	assert.Equal(t, msg, de.Message)
}

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(userID, sessionID, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	requireUnauthorized(t, err, "invalid token")
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	past := NewJWTService("test-signing-key", "test-issuer", "test-audience",
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))

	token, err := past.GenerateAccessToken(userID, sessionID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	requireUnauthorized(t, err, "token has expired")
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer", "test-audience")
	token, err := other.GenerateAccessToken(userID, sessionID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	requireUnauthorized(t, err, "invalid token")
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "somebody-else")
	token, err := other.GenerateAccessToken(userID, sessionID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	requireUnauthorized(t, err, "invalid token")
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  []string{"test-audience"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	requireUnauthorized(t, err, "invalid token")
}

func Test_Adapter(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(userID, sessionID, expiresIn)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)

	_, err = NewJWTServiceAdapter(jwtService).ValidateToken("nope")
	assert.Error(t, err)
}
