// Package domain contains the core data types for the trip planner.
// This package depends only on uuid and is imported by every other internal
// package (policy, repo, service, handler).
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trip is a scheduled community event. It is the top-level aggregate: gear
// items, admins and attendance records all belong to a trip.
//
// A trip is always created in draft. Only a super admin moves it between
// draft and published, and a published trip always has at least one admin.
type Trip struct {
	ID               uuid.UUID
	Name             string
	Location         string
	Description      string
	PhotoAlbumLink   string
	StartDate        time.Time
	EndDate          time.Time
	AttendanceCutoff *time.Time // nil means no attendance cutoff
	Draft            bool

	// Admins holds the user ids of the trip's admins, sorted.
	Admins []uuid.UUID
	// Attendees holds the ids of families attending, sorted.
	// Populated only by reads that rehydrate the trip.
	Attendees []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether userID is listed in the trip's admins.
func (t Trip) IsAdmin(userID uuid.UUID) bool {
	return slices.Contains(t.Admins, userID)
}

// Timing returns the time-derived state of the trip at now.
func (t Trip) Timing(now time.Time) TripTiming {
	return TimingAt(now, t.StartDate, t.EndDate, t.AttendanceCutoff)
}

// TripInput carries the fields supplied when creating a trip.
type TripInput struct {
	Name             string
	Location         string
	Description      string
	PhotoAlbumLink   string
	StartDate        time.Time
	EndDate          time.Time
	AttendanceCutoff *time.Time
}

// TripPatch carries a partial update. Nil fields are left unchanged.
// ClearAttendanceCutoff removes an existing cutoff; it wins over
// AttendanceCutoff when both are set.
type TripPatch struct {
	Name                  *string
	Location              *string
	Description           *string
	PhotoAlbumLink        *string
	StartDate             *time.Time
	EndDate               *time.Time
	AttendanceCutoff      *time.Time
	ClearAttendanceCutoff bool
}

// NewDraftTrip builds an unsaved trip from in. The result is always a draft
// with no admins, whoever asked for it.
func NewDraftTrip(in TripInput) Trip {
	return Trip{
		Name:             strings.TrimSpace(in.Name),
		Location:         strings.TrimSpace(in.Location),
		Description:      in.Description,
		PhotoAlbumLink:   in.PhotoAlbumLink,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		AttendanceCutoff: in.AttendanceCutoff,
		Draft:            true,
	}
}

// Apply returns a copy of t with the patch merged in. It does not validate;
// call Validate on the result so the invariants are checked against the
// merged values rather than the delta.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Location != nil {
		t.Location = strings.TrimSpace(*p.Location)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PhotoAlbumLink != nil {
		t.PhotoAlbumLink = *p.PhotoAlbumLink
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.AttendanceCutoff != nil {
		c := *p.AttendanceCutoff
		t.AttendanceCutoff = &c
	}
	if p.ClearAttendanceCutoff {
		t.AttendanceCutoff = nil
	}
	return t
}

// Validate enforces the trip field invariants shared by create and update:
//   - Name and Location must be non-empty.
//   - StartDate and EndDate must be set, and EndDate must not be before StartDate.
//   - AttendanceCutoff, if set, must not be after StartDate.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(t.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end_date %s must not be before start_date %s",
			ErrValidation, t.EndDate.Format(time.DateOnly), t.StartDate.Format(time.DateOnly))
	}
	if t.AttendanceCutoff != nil && t.AttendanceCutoff.After(t.StartDate) {
		return fmt.Errorf("%w: attendance_cutoff_date %s must not be after start_date %s",
			ErrValidation, t.AttendanceCutoff.Format(time.DateOnly), t.StartDate.Format(time.DateOnly))
	}
	return nil
}
