// Package middleware holds the Gin middleware chain: authentication,
// tenant scoping, request identity, logging and protection limits.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// Context keys set by Authenticate.
const (
	ContextUserID    = "auth_user_id"
	ContextCompanyID = "auth_company_id"
	ContextRole      = "auth_role"
	ContextToken     = "auth_token"
	ContextClaims    = "auth_claims"
)

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer token and stores the resolved identity
// in the request context. Requests without a valid token get a 401.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, bearerPrefix)

		claims, err := tokens.Verify(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			abortUnauthorized(c, "malformed token subject")
			return
		}
		companyID, err := claims.CompanyUUID()
		if err != nil {
			abortUnauthorized(c, "malformed token tenant")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextCompanyID, companyID)
		c.Set(ContextRole, identity.Role(claims.Role))
		c.Set(ContextToken, tokenString)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// TenantGuard rejects requests whose companyId path segment does not match
// the authenticated tenant. Tokens never grant cross-tenant access.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		pathID, err := uuid.Parse(c.Param("companyId"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewError(shared.CodeValidation, "invalid company id"))
			return
		}
		if pathID != CompanyID(c) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewError(shared.CodeForbidden, "token does not grant access to this company"))
			return
		}
		c.Next()
	}
}

// RequireRole allows the request only for the listed roles.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := Role(c)
		for _, role := range roles {
			if current == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewError(shared.CodeForbidden, "insufficient role"))
	}
}

// UserID returns the authenticated user id, or uuid.Nil outside Authenticate.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// CompanyID returns the authenticated tenant id, or uuid.Nil.
func CompanyID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextCompanyID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// Role returns the authenticated role, empty when unauthenticated.
func Role(c *gin.Context) identity.Role {
	if v, ok := c.Get(ContextRole); ok {
		if role, ok := v.(identity.Role); ok {
			return role
		}
	}
	return ""
}

// Token returns the raw bearer token of the request.
func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}

// Claims returns the verified token claims, nil when unauthenticated.
func Claims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewError(shared.CodeUnauthorized, message))
}
