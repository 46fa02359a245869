package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/policy"
	"github.com/pkordes/tripplanner/internal/repo"
)

// AttendanceService records which families attend which trips.
type AttendanceService struct {
	deps
	store repo.Store
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(store repo.Store, act activity.Logger, now Clock) *AttendanceService {
	return &AttendanceService{deps: newDeps(act, now), store: store}
}

// MarkAttendance sets whether familyID attends tripID and returns the trip
// with its refreshed attendee list. Marking an attending family again and
// unmarking an absent one both succeed without change.
//
// Checks run in this order:
//  1. the trip exists (domain.ErrNotFound)
//  2. the trip is published (domain.ErrPrecondition)
//  3. the attendance cutoff has not passed (domain.ErrPrecondition)
//  4. the caller may act for the family on this trip (domain.ErrForbidden)
//  5. the family exists and is approved and active
func (s *AttendanceService) MarkAttendance(ctx context.Context, c domain.Caller, tripID, familyID uuid.UUID, attending bool) (domain.Trip, error) {
	var result domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Draft {
			return fmt.Errorf("%w: trip %s is a draft and does not take attendance", domain.ErrPrecondition, tripID)
		}
		if trip.Timing(s.now()).CutoffPassed {
			return fmt.Errorf("%w: attendance for trip %s closed on %s",
				domain.ErrPrecondition, tripID, trip.AttendanceCutoff.Format(time.DateOnly))
		}
		if err := policy.Authorize(policy.MarkAttendance, c, policy.ForTripFamily(trip, familyID)); err != nil {
			return err
		}
		if err := requireParticipating(ctx, r.Families, familyID); err != nil {
			return err
		}

		if attending {
			err = r.Attendance.Upsert(ctx, tripID, familyID)
		} else {
			_, err = r.Attendance.Delete(ctx, tripID, familyID)
		}
		if err != nil {
			return err
		}
		result, err = r.Trips.GetByID(ctx, tripID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.AttendanceService.MarkAttendance: %w", err)
	}
	s.record(ctx, c, "attendance.marked", domain.EntityAttendance, tripID, map[string]any{
		"family_id": familyID.String(),
		"attending": attending,
	})
	return result, nil
}

// ListAttendees returns the families attending a trip, ordered by name.
// Drafts are reported as domain.ErrNotFound to callers who may not see them.
func (s *AttendanceService) ListAttendees(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.Family, error) {
	r := s.store.Repos()
	trip, err := r.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.AttendanceService.ListAttendees: %w", err)
	}
	if err := checkVisible(c, trip); err != nil {
		return nil, fmt.Errorf("service.AttendanceService.ListAttendees: %w", err)
	}
	families, err := r.Attendance.ListFamilies(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.AttendanceService.ListAttendees: %w", err)
	}
	if families == nil {
		families = []domain.Family{}
	}
	return families, nil
}

// requireParticipating fails with domain.ErrNotFound for an unknown family
// and domain.ErrPrecondition for one that is not approved and active.
func requireParticipating(ctx context.Context, families repo.FamilyRepo, familyID uuid.UUID) error {
	fam, err := families.GetByID(ctx, familyID)
	if err != nil {
		return fmt.Errorf("family %s: %w", familyID, err)
	}
	if !fam.CanParticipate() {
		return fmt.Errorf("%w: family %s must be approved and active (status %s, active %t)",
			domain.ErrPrecondition, familyID, fam.Status, fam.IsActive)
	}
	return nil
}
