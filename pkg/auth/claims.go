package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by the fraud service.
const (
	RoleAdmin     = "admin"
	RoleAnalyst   = "fraud_analyst"
	RoleAPIClient = "api_client"
)

// Claims are the registered JWT claims plus the caller's roles.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole reports whether role was granted.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether at least one of roles was granted.
func (c Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}
