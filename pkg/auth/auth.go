package auth

import (
	"context"
	"fmt"
	"strings"

	apperrors "hallpass/pkg/errors"
)

const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
	RoleUser    = "user"
)

// BookingRoles are the roles allowed to create and manage bookings.
var BookingRoles = []string{RoleAdmin, RoleFaculty, RoleStudent}

// Principal is the narrow identity capability the services consume. It carries
// nothing from the identity subsystem beyond who the caller is and what roles
// they hold.
type Principal struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// RequireRole returns a FORBIDDEN error unless the principal holds at least
// one of the given roles.
func RequireRole(p *Principal, roles ...string) error {
	if p == nil {
		return apperrors.Unauthorized("authentication required")
	}
	if !p.HasAnyRole(roles...) {
		return apperrors.Forbidden(fmt.Sprintf("requires one of roles: %s", strings.Join(roles, ", ")))
	}
	return nil
}

type contextKey string

const principalKey contextKey = "principal"

func NewContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
