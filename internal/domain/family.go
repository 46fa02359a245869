package domain

import (
	"time"

	"github.com/google/uuid"
)

// FamilyStatus is the approval state of a family registration.
type FamilyStatus string

const (
	FamilyPending  FamilyStatus = "PENDING"
	FamilyApproved FamilyStatus = "APPROVED"
	FamilyRejected FamilyStatus = "REJECTED"
)

// Family is the membership unit that attends trips and pledges gear.
type Family struct {
	ID        uuid.UUID
	Name      string
	Status    FamilyStatus
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Members is populated by reads that hydrate the family.
	Members []User
}

// CanParticipate reports whether the family may attend trips and pledge gear.
func (f Family) CanParticipate() bool {
	return f.Status == FamilyApproved && f.IsActive
}

// UserType distinguishes adults from children within a family.
type UserType string

const (
	UserAdult UserType = "adult"
	UserChild UserType = "child"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserAdult || t == UserChild
}

// User is a person known to the platform. Only adults can be trip admins.
// FamilyID is nil for staff accounts that belong to no family.
type User struct {
	ID       uuid.UUID
	FamilyID *uuid.UUID
	Name     string
	Type     UserType
}

// MemberInput describes a person to add to a family.
type MemberInput struct {
	Name string
	Type UserType
}
