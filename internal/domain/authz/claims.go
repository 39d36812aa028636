package authz

import (
	"strings"

	"github.com/google/uuid"
)

// Claims represents the subject identity and policy versions carried by an
// already-verified request. Signature verification happens upstream (the
// edge/gateway that issued and signed the token); this service only trusts
// and interprets the claims forwarded to it.
type Claims struct {
	TenantID      uuid.UUID
	UserID        uuid.UUID
	Username      string
	RoleIDs       []string
	Permissions   []string
	TenantVersion int64
	UserVersion   int64
}

// HasPermission checks if the claims contain a specific permission
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission || p == "*" {
			return true
		}
		if strings.HasSuffix(p, ":*") && strings.HasPrefix(permission, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the claims contain any of the specified permissions
func (c *Claims) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if c.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the claims contain all of the specified permissions
func (c *Claims) HasAllPermissions(permissions ...string) bool {
	for _, p := range permissions {
		if !c.HasPermission(p) {
			return false
		}
	}
	return true
}

// IsLegacy reports whether both policy-version claims are zero, which marks a
// pre-versioning token that bypasses the gate's staleness check (§4.J).
func (c *Claims) IsLegacy() bool {
	return c.TenantVersion == 0 && c.UserVersion == 0
}
