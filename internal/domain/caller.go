package domain

import (
	"context"

	"github.com/google/uuid"
)

// Role is the capability class of a caller, as resolved by the identity
// provider. The core never derives it.
type Role string

const (
	RoleFamily     Role = "FAMILY"
	RoleTripAdmin  Role = "TRIP_ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFamily, RoleTripAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Caller identifies who is invoking an operation.
type Caller struct {
	UserID   uuid.UUID
	Role     Role
	FamilyID *uuid.UUID
}

// IsSuperAdmin reports whether the caller holds the super admin role.
func (c Caller) IsSuperAdmin() bool {
	return c.Role == RoleSuperAdmin
}

// OwnsFamily reports whether familyID is the caller's own family.
func (c Caller) OwnsFamily(familyID uuid.UUID) bool {
	return c.FamilyID != nil && *c.FamilyID == familyID
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx by WithCaller.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
