package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-key", "memberport-test")
	memberID := id.NewMemberID()

	token, err := svc.GenerateAccessToken(memberID, id.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, id.RoleAdmin, claims.Role)
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("test-key", "memberport-test")

	token, err := svc.GenerateAccessToken(id.NewMemberID(), id.RoleMember, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func TestTokenSignedWithDifferentKey(t *testing.T) {
	issuer := NewService("key-one", "memberport-test")
	verifier := NewService("key-two", "memberport-test")

	token, err := issuer.GenerateAccessToken(id.NewMemberID(), id.RoleMember, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageToken(t *testing.T) {
	svc := NewService("test-key", "memberport-test")

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}
