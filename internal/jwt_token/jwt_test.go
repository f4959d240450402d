package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "astrarium", "astrarium-api")
	userID := id.UserID(uuid.New())

	token, err := svc.GenerateAccessToken(userID, id.RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID, "JTI must be set for revocation tracking")
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "astrarium", "astrarium-api")
	token, err := svc.GenerateAccessToken(id.UserID(uuid.New()), id.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("key-one", "astrarium", "astrarium-api")
	verifier := NewJWTService("key-two", "astrarium", "astrarium-api")

	token, err := issuer.GenerateAccessToken(id.UserID(uuid.New()), id.RoleUser, time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter_TypedClaims(t *testing.T) {
	svc := NewJWTService("test-signing-key", "astrarium", "astrarium-api")
	adapter := NewMiddlewareAdapter(svc)
	userID := id.UserID(uuid.New())

	token, err := svc.GenerateAccessToken(userID, id.RoleUser, time.Minute)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, id.RoleUser, claims.Role)
}
