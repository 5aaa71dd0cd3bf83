package domain

import "context"

// TokenClaims is the decoded identity a verified bearer token carries.
type TokenClaims struct {
	PrincipalID string
	Email       string
	Name        string
	Role        Role
}

// RoleGate is the second-stage authorization predicate. It decides over an
// already-validated role claim and must never re-verify the token.
type RoleGate interface {
	Allow(ctx context.Context, role, required Role) (bool, error)
}
