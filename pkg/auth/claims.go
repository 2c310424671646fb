// Package auth issues and validates the JWTs carried by service callers and
// enforces them on gRPC and HTTP entry points.
package auth

import (
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Caller roles. Writers may request assessments; auditors only read them.
const (
	RoleAdmin     = "admin"
	RoleOperator  = "operator"
	RoleAuditor   = "auditor"
	RoleAPIClient = "api_client"
)

// ErrMissingTenant rejects tokens that are not bound to a tenant.
var ErrMissingTenant = errors.New("auth: token has no tenant")

// Claims are the custom claims of a caller token. Every assessment is
// tenant-scoped, so a token without a tenant never validates.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []string  `json:"roles"`
}

// Validate is called by the jwt parser after the registered claims pass.
func (c Claims) Validate() error {
	if c.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	return nil
}

// HasRole reports whether role was granted.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether at least one of roles was granted.
func (c Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}
