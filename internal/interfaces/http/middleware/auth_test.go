package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/config"
)

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	return auth.NewTokenManager(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Expiration: time.Hour,
		Issuer:     "test",
	}, auth.NewMemoryTokenBlacklist())
}

func authedRouter(t *testing.T, tokens *auth.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(tokens))
	r.GET("/companies/:companyId/ping", TenantGuard(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    UserID(c).String(),
			"company_id": CompanyID(c).String(),
			"role":       string(Role(c)),
		})
	})
	return r
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	r := authedRouter(t, newTokenManager(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/companies/"+uuid.NewString()+"/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	tokens := newTokenManager(t)
	r := authedRouter(t, tokens)

	userID := uuid.New()
	companyID := uuid.New()
	token, _, err := tokens.Issue(userID, companyID, identity.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/companies/"+companyID.String()+"/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), companyID.String())
	assert.Contains(t, w.Body.String(), "ADMIN")
}

func TestTenantGuardRejectsForeignCompany(t *testing.T) {
	tokens := newTokenManager(t)
	r := authedRouter(t, tokens)

	token, _, err := tokens.Issue(uuid.New(), uuid.New(), identity.RoleStaff)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/companies/"+uuid.NewString()+"/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := newTokenManager(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(tokens))
	r.DELETE("/admin", RequireRole(identity.RoleOwner, identity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	staffToken, _, err := tokens.Issue(uuid.New(), uuid.New(), identity.RoleStaff)
	require.NoError(t, err)
	ownerToken, _, err := tokens.Issue(uuid.New(), uuid.New(), identity.RoleOwner)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestIDEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
