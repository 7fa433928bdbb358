package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/infrastructure/config"
)

func testManager(blacklist TokenBlacklist) *TokenManager {
	return NewTokenManager(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Expiration: time.Hour,
		Issuer:     "retailcore-test",
	}, blacklist)
}

func TestIssueAndVerify(t *testing.T) {
	m := testManager(nil)
	userID, companyID := uuid.New(), uuid.New()

	token, expiresAt, err := m.Issue(userID, companyID, identity.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, companyID.String(), claims.CompanyID)
	assert.Equal(t, string(identity.RoleAdmin), claims.Role)
	assert.NotEmpty(t, claims.ID)

	parsedCompany, err := claims.CompanyUUID()
	require.NoError(t, err)
	assert.Equal(t, companyID, parsedCompany)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := testManager(nil)
	token, _, err := m.Issue(uuid.New(), uuid.New(), identity.RoleStaff)
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager(config.JWTConfig{
		Secret:     "another-secret-another-secret-32",
		Expiration: time.Hour,
		Issuer:     "retailcore-test",
	}, nil)
	_, err = other.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Expiration: -time.Minute,
		Issuer:     "retailcore-test",
	}, nil)
	token, _, err := m.Issue(uuid.New(), uuid.New(), identity.RoleOwner)
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRevoke(t *testing.T) {
	blacklist := NewMemoryTokenBlacklist()
	m := testManager(blacklist)
	ctx := context.Background()

	token, expiresAt, err := m.Issue(uuid.New(), uuid.New(), identity.RoleOwner)
	require.NoError(t, err)

	_, err = m.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token, expiresAt))

	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestMemoryBlacklistExpiry(t *testing.T) {
	blacklist := NewMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries are pruned")
}
