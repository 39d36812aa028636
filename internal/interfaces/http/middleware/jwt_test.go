package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/platform/internal/domain/authz"
)

func newTestGate(store authz.VersionStore, enforced bool) *authz.PolicyVersionGate {
	return authz.NewPolicyVersionGate(store, authz.GateConfig{
		Enforced:                enforced,
		AllowLegacyZeroVersions: true,
		Timeout:                 50 * time.Millisecond,
	}, nil)
}

func setupRouterWithGate(gate *authz.PolicyVersionGate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(gate))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	return router
}

func TestJWTAuthMiddleware_AdmitsFreshClaims(t *testing.T) {
	store := authz.NewInMemoryVersionStore()
	gate := newTestGate(store, true)
	router := setupRouterWithGate(gate)

	tenantID, userID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_MissingTenantClaim(t *testing.T) {
	store := authz.NewInMemoryVersionStore()
	gate := newTestGate(store, true)
	router := setupRouterWithGate(gate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_RejectsStaleVersion(t *testing.T) {
	store := authz.NewInMemoryVersionStore()
	gate := authz.NewPolicyVersionGate(store, authz.GateConfig{
		Enforced:                true,
		AllowLegacyZeroVersions: false,
		Timeout:                 50 * time.Millisecond,
	}, nil)
	router := setupRouterWithGate(gate)

	tenantID, userID := uuid.New(), uuid.New()
	_, err := store.BumpTenantVersion(context.Background(), tenantID)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("X-Tenant-ID", tenantID.String())
	request.Header.Set("X-User-ID", userID.String())
	request.Header.Set("X-Tenant-Version", "0")
	request.Header.Set("X-User-Version", "0")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, request)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_SkipsHealthPath(t *testing.T) {
	store := authz.NewInMemoryVersionStore()
	gate := newTestGate(store, true)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(gate))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetJWTPermissions_ExtractsCommaSeparatedHeader(t *testing.T) {
	store := authz.NewInMemoryVersionStore()
	gate := newTestGate(store, true)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(gate))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"permissions": GetJWTPermissions(c)})
	})

	tenantID, userID := uuid.New(), uuid.New()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("X-Tenant-ID", tenantID.String())
	request.Header.Set("X-User-ID", userID.String())
	request.Header.Set("X-Permissions", "inventory:read,inventory:write")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, request)
	assert.Equal(t, http.StatusOK, rec.Code)
}
