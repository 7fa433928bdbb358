// Package auth implements token issuance and verification: HMAC-signed
// JWTs carrying the tenant and role claims, plus a revocation list so
// logout takes effect before expiry.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrMissingCompanyID = errors.New("missing company_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the custom JWT claims carried by every access token.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// TokenManager signs, verifies and revokes access tokens.
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	blacklist  TokenBlacklist
}

// NewTokenManager creates a token manager. The blacklist may be nil, in
// which case revocation is a no-op and tokens live until expiry.
func NewTokenManager(cfg config.JWTConfig, blacklist TokenBlacklist) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
		blacklist:  blacklist,
	}
}

// Issue signs a token for the user scoped to their company.
func (m *TokenManager) Issue(userID, companyID uuid.UUID, role identity.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiration)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		CompanyID: companyID.String(),
		UserID:    userID.String(),
		Role:      string(role),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses and validates a token, rejecting revoked ones.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.CompanyID == "" {
		return nil, ErrMissingCompanyID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	if m.blacklist != nil {
		revoked, err := m.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke blacklists the token's JTI for its remaining lifetime.
func (m *TokenManager) Revoke(ctx context.Context, tokenString string, expiresAt time.Time) error {
	if m.blacklist == nil {
		return nil
	}
	claims, err := m.Verify(ctx, tokenString)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.blacklist.Revoke(ctx, claims.ID, ttl)
}

// CompanyUUID parses the company claim.
func (c *Claims) CompanyUUID() (uuid.UUID, error) {
	return uuid.Parse(c.CompanyID)
}

// UserUUID parses the user claim.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
