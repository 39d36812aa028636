package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stockledger/platform/internal/domain/authz"
	"github.com/stockledger/platform/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys populated once a request's claims have been accepted by the
// Policy-Version Gate.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleIDsKey  = "jwt_role_ids"
	JWTPermissions = "jwt_permissions"
)

// Headers carrying claims forwarded by the upstream identity boundary.
// Signature verification happens there; this middleware trusts what it
// receives and applies only the Policy-Version Gate check (§4.J).
const (
	headerTenantID      = "X-Tenant-ID"
	headerUserID        = "X-User-ID"
	headerUsername      = "X-Username"
	headerRoleIDs       = "X-Role-IDs"
	headerPermissions   = "X-Permissions"
	headerTenantVersion = "X-Tenant-Version"
	headerUserVersion   = "X-User-Version"
)

// PolicyGateMiddlewareConfig holds configuration for the gate middleware.
type PolicyGateMiddlewareConfig struct {
	// Gate performs the version check. Required.
	Gate *authz.PolicyVersionGate
	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication.
	SkipPathPrefixes []string
	// OnError is an optional callback invoked instead of the default response.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultPolicyGateConfig returns default gate middleware configuration.
func DefaultPolicyGateConfig(gate *authz.PolicyVersionGate) PolicyGateMiddlewareConfig {
	return PolicyGateMiddlewareConfig{
		Gate: gate,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{},
	}
}

// JWTAuthMiddleware creates the Policy-Version Gate middleware with default config.
func JWTAuthMiddleware(gate *authz.PolicyVersionGate) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultPolicyGateConfig(gate))
}

// JWTAuthMiddlewareWithConfig creates the Policy-Version Gate middleware.
//
// It extracts claims already verified upstream from trusted headers, then
// checks the claimed tenant/user policy versions against the current
// AuthzVersions store. A stale claim is rejected with 401; a version-store
// timeout is rejected with 503 unless the gate's enforcement flag has been
// turned off for a gradual rollout.
func JWTAuthMiddlewareWithConfig(cfg PolicyGateMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		claims, err := claimsFromHeaders(c)
		if err != nil {
			handleAuthError(c, cfg, err, "Missing or malformed claims")
			return
		}

		if err := cfg.Gate.Check(c.Request.Context(), claims); err != nil {
			handleAuthError(c, cfg, err, "Policy-version gate rejected the request")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID.String())
		c.Set(JWTTenantIDKey, claims.TenantID.String())
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleIDsKey, claims.RoleIDs)
		c.Set(JWTPermissions, claims.Permissions)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID.String())
		ctx, _ = logger.WithTenantID(ctx, log, claims.TenantID.String())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("policy-version gate admitted request",
				zap.String("user_id", claims.UserID.String()),
				zap.String("tenant_id", claims.TenantID.String()),
			)
		}

		c.Next()
	}
}

// claimsFromHeaders builds Claims from the trusted headers an upstream
// identity boundary forwards alongside an already-verified token.
func claimsFromHeaders(c *gin.Context) (*authz.Claims, error) {
	tenantID, err := uuid.Parse(c.GetHeader(headerTenantID))
	if err != nil {
		return nil, errors.New("missing or invalid tenant claim")
	}
	userID, err := uuid.Parse(c.GetHeader(headerUserID))
	if err != nil {
		return nil, errors.New("missing or invalid user claim")
	}

	tenantV, err := parseVersionHeader(c.GetHeader(headerTenantVersion))
	if err != nil {
		return nil, errors.New("invalid tenant version claim")
	}
	userV, err := parseVersionHeader(c.GetHeader(headerUserVersion))
	if err != nil {
		return nil, errors.New("invalid user version claim")
	}

	claims := &authz.Claims{
		TenantID:      tenantID,
		UserID:        userID,
		Username:      c.GetHeader(headerUsername),
		TenantVersion: tenantV,
		UserVersion:   userV,
	}
	if v := c.GetHeader(headerRoleIDs); v != "" {
		claims.RoleIDs = strings.Split(v, ",")
	}
	if v := c.GetHeader(headerPermissions); v != "" {
		claims.Permissions = strings.Split(v, ",")
	}
	return claims, nil
}

func parseVersionHeader(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// handleAuthError handles authentication/authorization errors
func handleAuthError(c *gin.Context, cfg PolicyGateMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("policy-version gate rejected request",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	if errors.Is(err, authz.ErrVersionStoreUnavailable) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTHZ_STORE_UNAVAILABLE",
				"message": "Authorization version store unavailable",
			},
		})
		return
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"
	if errors.Is(err, authz.ErrStaleToken) {
		errorCode = "STALE_TOKEN"
		errorMessage = "Token is stale, re-authenticate"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetJWTClaims retrieves claims from gin.Context
func GetJWTClaims(c *gin.Context) *authz.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if v, ok := claims.(*authz.Claims); ok {
			return v
		}
	}
	return nil
}

// MustGetJWTClaims retrieves claims from gin.Context or panics if not found
func MustGetJWTClaims(c *gin.Context) *authz.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("claims not found in context")
	}
	return claims
}

// GetJWTUserID retrieves the user ID from claims in context
func GetJWTUserID(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTTenantID retrieves the tenant ID from claims in context
func GetJWTTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := tenantID.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTUsername retrieves the username from claims in context
func GetJWTUsername(c *gin.Context) string {
	if username, exists := c.Get(JWTUsernameKey); exists {
		if u, ok := username.(string); ok {
			return u
		}
	}
	return ""
}

// GetJWTRoleIDs retrieves the role IDs from claims in context
func GetJWTRoleIDs(c *gin.Context) []string {
	if roleIDs, exists := c.Get(JWTRoleIDsKey); exists {
		if ids, ok := roleIDs.([]string); ok {
			return ids
		}
	}
	return nil
}

// GetJWTPermissions retrieves the permissions from claims in context
func GetJWTPermissions(c *gin.Context) []string {
	if permissions, exists := c.Get(JWTPermissions); exists {
		if perms, ok := permissions.([]string); ok {
			return perms
		}
	}
	return nil
}

// OptionalJWTAuthMiddleware creates middleware that doesn't require claims but
// extracts and gate-checks them if present.
func OptionalJWTAuthMiddleware(gate *authz.PolicyVersionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerTenantID) == "" && c.GetHeader(headerUserID) == "" {
			c.Next()
			return
		}

		claims, err := claimsFromHeaders(c)
		if err != nil {
			c.Next()
			return
		}
		if err := gate.Check(c.Request.Context(), claims); err != nil {
			c.Next()
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID.String())
		c.Set(JWTTenantIDKey, claims.TenantID.String())
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleIDsKey, claims.RoleIDs)
		c.Set(JWTPermissions, claims.Permissions)

		c.Next()
	}
}
