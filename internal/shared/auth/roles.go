package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role is the access level carried by an identity.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleClient Role = "client"
)

// ErrForbidden is returned when an identity lacks a permitted role.
var ErrForbidden = errors.New("forbidden")

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	default:
		return false
	}
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Authorize decides whether claims may access a route restricted to allowed.
// An empty allowed set places no restriction. A nil claims is always denied
// when a restriction exists.
func Authorize(claims *Claims, allowed []Role) error {
	if len(allowed) == 0 {
		return nil
	}
	if claims == nil || claims.Role == "" {
		return fmt.Errorf("%w: no identity", ErrForbidden)
	}
	for _, r := range allowed {
		if claims.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q not permitted", ErrForbidden, claims.Role)
}

type claimsCtxKey struct{}

// WithClaims stores claims on a context for downstream services.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	if ctx == nil {
		return Claims{}, false
	}
	c, ok := ctx.Value(claimsCtxKey{}).(Claims)
	return c, ok
}
