// Package policy is the single authorization decision point for the trip
// planner. Every service operation that can be denied asks Authorize instead
// of branching on roles itself.
package policy

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
)

// Action names an operation subject to authorization.
type Action string

const (
	CreateTrip     Action = "create trip"
	ViewDraft      Action = "view draft trip"
	EditTrip       Action = "edit trip"
	PublishTrip    Action = "publish trip"
	ManageAdmins   Action = "manage trip admins"
	DeleteTrip     Action = "delete trip"
	MarkAttendance Action = "mark attendance"
	ManageGear     Action = "manage gear items"
	PledgeGear     Action = "pledge gear"
	ManageFamily   Action = "manage family"
	ViewFamily     Action = "view family"
	ManageMembers  Action = "manage family members"
)

// Scope is the set of resources a role may act on for an action.
type Scope uint8

const (
	// Own covers resources owned by the caller's family.
	Own Scope = 1 << iota
	// Administered covers trips whose admins list the caller.
	Administered
	// Any covers every resource.
	Any

	None Scope = 0
)

// matrix is the role x action table. Anything missing is denied.
var matrix = map[Action]map[domain.Role]Scope{
	CreateTrip: {
		domain.RoleTripAdmin:  Any,
		domain.RoleSuperAdmin: Any,
	},
	ViewDraft: {
		domain.RoleFamily:     Administered,
		domain.RoleTripAdmin:  Administered,
		domain.RoleSuperAdmin: Any,
	},
	EditTrip: {
		domain.RoleFamily:     Administered,
		domain.RoleTripAdmin:  Administered,
		domain.RoleSuperAdmin: Any,
	},
	PublishTrip:  {domain.RoleSuperAdmin: Any},
	ManageAdmins: {domain.RoleSuperAdmin: Any},
	DeleteTrip:   {domain.RoleSuperAdmin: Any},
	MarkAttendance: {
		domain.RoleFamily:     Own,
		domain.RoleTripAdmin:  Own | Administered,
		domain.RoleSuperAdmin: Any,
	},
	ManageGear: {
		domain.RoleFamily:     Administered,
		domain.RoleTripAdmin:  Administered,
		domain.RoleSuperAdmin: Any,
	},
	PledgeGear: {
		domain.RoleFamily:     Own,
		domain.RoleTripAdmin:  Own | Administered,
		domain.RoleSuperAdmin: Any,
	},
	ManageFamily: {domain.RoleSuperAdmin: Any},
	ManageMembers: {
		domain.RoleFamily:     Own,
		domain.RoleTripAdmin:  Own,
		domain.RoleSuperAdmin: Any,
	},
	ViewFamily: {
		domain.RoleFamily:     Own,
		domain.RoleTripAdmin:  Own,
		domain.RoleSuperAdmin: Any,
	},
}

// Target describes the resource an action is applied to. Zero fields mean
// "not relevant for this action".
type Target struct {
	// FamilyID is the family the action is performed on behalf of.
	FamilyID *uuid.UUID
	// TripAdmins is the admin set of the trip being acted on.
	TripAdmins []uuid.UUID
}

// ForFamily builds a Target for an action on behalf of familyID.
func ForFamily(familyID uuid.UUID) Target {
	return Target{FamilyID: &familyID}
}

// ForTrip builds a Target for an action on a trip.
func ForTrip(t domain.Trip) Target {
	return Target{TripAdmins: t.Admins}
}

// ForTripFamily builds a Target for an action on behalf of familyID within trip t.
func ForTripFamily(t domain.Trip, familyID uuid.UUID) Target {
	return Target{FamilyID: &familyID, TripAdmins: t.Admins}
}

// Allowed returns the scopes the caller's role holds for a on tgt that
// actually match, or None.
func Allowed(a Action, c domain.Caller, tgt Target) Scope {
	granted := matrix[a][c.Role]
	var matched Scope
	if granted&Any != 0 {
		matched |= Any
	}
	if granted&Own != 0 && tgt.FamilyID != nil && c.OwnsFamily(*tgt.FamilyID) {
		matched |= Own
	}
	if granted&Administered != 0 && slices.Contains(tgt.TripAdmins, c.UserID) {
		matched |= Administered
	}
	return matched
}

// Authorize returns nil when c may perform a on tgt and an error wrapping
// domain.ErrForbidden otherwise.
func Authorize(a Action, c domain.Caller, tgt Target) error {
	if !c.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, c.Role)
	}
	if Allowed(a, c, tgt) != None {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s: %s", domain.ErrForbidden, c.Role, a, denialReason(matrix[a][c.Role]))
}

func denialReason(granted Scope) string {
	switch {
	case granted == None:
		return "role not permitted"
	case granted&Own != 0 && granted&Administered != 0:
		return "only for your own family or trips you administer"
	case granted&Own != 0:
		return "only for your own family"
	default:
		return "only for trips you administer"
	}
}
