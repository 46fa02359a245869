package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/policy"
	"github.com/pkordes/tripplanner/internal/repo"
)

// TripService owns a trip's lifecycle: draft/published state, dates and the
// admin set.
type TripService struct {
	deps
	store repo.Store
}

// NewTripService constructs a TripService. A nil act discards activity
// entries; a nil now uses time.Now.
func NewTripService(store repo.Store, act activity.Logger, now Clock) *TripService {
	return &TripService{deps: newDeps(act, now), store: store}
}

// Create validates and persists a new trip. The trip is always created in
// draft with no admins.
// Returns domain.ErrForbidden for family callers and domain.ErrValidation
// for bad input.
func (s *TripService) Create(ctx context.Context, c domain.Caller, in domain.TripInput) (domain.Trip, error) {
	if err := policy.Authorize(policy.CreateTrip, c, policy.Target{}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip := domain.NewDraftTrip(in)
	if err := trip.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.store.Repos().Trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.record(ctx, c, "trip.created", domain.EntityTrip, created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// GetByID returns a trip with its admins and attendees.
// Drafts are reported as domain.ErrNotFound to callers who may not see them.
func (s *TripService) GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.Repos().Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	if err := checkVisible(c, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of trips visible to the caller, newest first,
// and the total number of visible trips.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListPaged(ctx context.Context, c domain.Caller, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var f repo.TripFilter
	if c.IsSuperAdmin() {
		f.AllDrafts = true
	} else {
		uid := c.UserID
		f.DraftsAdministeredBy = &uid
	}

	trips, total, err := s.store.Repos().Trips.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update merges patch into the trip and persists it.
//   - Only super admins and the trip's own admins may edit (domain.ErrForbidden).
//   - Once the trip has started only super admins may edit (domain.ErrPrecondition).
//   - Date invariants are checked on the merged trip (domain.ErrValidation).
func (s *TripService) Update(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	var updated domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(policy.EditTrip, c, policy.ForTrip(trip)); err != nil {
			return err
		}
		if !c.IsSuperAdmin() && trip.Timing(s.now()).Started {
			return fmt.Errorf("%w: trip %s started on %s; only a super admin may edit it",
				domain.ErrPrecondition, trip.ID, trip.StartDate.Format(time.DateOnly))
		}

		merged := patch.Apply(trip)
		if err := merged.Validate(); err != nil {
			return err
		}
		updated, err = r.Trips.Update(ctx, merged)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.record(ctx, c, "trip.updated", domain.EntityTrip, id, nil)
	return updated, nil
}

// Publish moves a draft trip to published. Super admins only.
// Returns domain.ErrAlreadyInState if it is already published and
// domain.ErrPrecondition if it has no admins.
func (s *TripService) Publish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.setDraft(ctx, c, id, false)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Publish: %w", err)
	}
	s.record(ctx, c, "trip.published", domain.EntityTrip, id, nil)
	return trip, nil
}

// Unpublish moves a published trip back to draft. Super admins only.
// Attendance and gear assignments are kept; they stay frozen because every
// attendance and gear mutation rejects draft trips.
func (s *TripService) Unpublish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.setDraft(ctx, c, id, true)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Unpublish: %w", err)
	}
	s.record(ctx, c, "trip.unpublished", domain.EntityTrip, id, nil)
	return trip, nil
}

func (s *TripService) setDraft(ctx context.Context, c domain.Caller, id uuid.UUID, draft bool) (domain.Trip, error) {
	if err := policy.Authorize(policy.PublishTrip, c, policy.Target{}); err != nil {
		return domain.Trip{}, err
	}

	var result domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if trip.Draft == draft {
			state := "published"
			if draft {
				state = "draft"
			}
			return fmt.Errorf("%w: trip %s is already %s", domain.ErrAlreadyInState, id, state)
		}
		if !draft && len(trip.Admins) == 0 {
			return fmt.Errorf("%w: trip %s must have at least one admin before it is published",
				domain.ErrPrecondition, id)
		}
		if err := r.Trips.SetDraft(ctx, id, draft); err != nil {
			return err
		}
		result, err = r.Trips.GetByID(ctx, id)
		return err
	})
	return result, err
}

// AssignAdmins replaces the trip's admin set. Super admins only.
// Every id must resolve to an adult user (domain.ErrValidation lists the
// offenders). A published trip cannot be left without admins.
func (s *TripService) AssignAdmins(ctx context.Context, c domain.Caller, id uuid.UUID, userIDs []uuid.UUID) (domain.Trip, error) {
	if err := policy.Authorize(policy.ManageAdmins, c, policy.Target{}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AssignAdmins: %w", err)
	}
	ids := dedupe(userIDs)

	var result domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := requireAdults(ctx, r.Users, ids); err != nil {
			return err
		}
		if !trip.Draft && len(ids) == 0 {
			return fmt.Errorf("%w: published trip %s must keep at least one admin",
				domain.ErrPrecondition, id)
		}
		if err := r.Trips.ReplaceAdmins(ctx, id, ids); err != nil {
			return err
		}
		result, err = r.Trips.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AssignAdmins: %w", err)
	}
	s.record(ctx, c, "trip.admins_assigned", domain.EntityTrip, id, map[string]any{"admin_count": len(ids)})
	return result, nil
}

// AddAdmin adds one adult user to the admin set. Super admins only.
// Adding an existing admin is a no-op.
func (s *TripService) AddAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error) {
	if err := policy.Authorize(policy.ManageAdmins, c, policy.Target{}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddAdmin: %w", err)
	}

	var result domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Trips.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := requireAdults(ctx, r.Users, []uuid.UUID{userID}); err != nil {
			return err
		}
		if err := r.Trips.AddAdmin(ctx, id, userID); err != nil {
			return err
		}
		var err error
		result, err = r.Trips.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddAdmin: %w", err)
	}
	s.record(ctx, c, "trip.admin_added", domain.EntityTrip, id, map[string]any{"user_id": userID.String()})
	return result, nil
}

// RemoveAdmin removes one admin. Super admins only.
// Returns domain.ErrNotFound if the user is not an admin of the trip and
// domain.ErrPrecondition when removing the last admin of a published trip.
// Draft trips may be left without admins.
func (s *TripService) RemoveAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error) {
	if err := policy.Authorize(policy.ManageAdmins, c, policy.Target{}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RemoveAdmin: %w", err)
	}

	var result domain.Trip
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		trip, err := r.Trips.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !trip.IsAdmin(userID) {
			return fmt.Errorf("%w: user %s is not an admin of trip %s", domain.ErrNotFound, userID, id)
		}
		if !trip.Draft && len(trip.Admins) == 1 {
			return fmt.Errorf("%w: cannot remove the last admin %s of published trip %s",
				domain.ErrPrecondition, userID, id)
		}
		if err := r.Trips.RemoveAdmin(ctx, id, userID); err != nil {
			return err
		}
		result, err = r.Trips.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RemoveAdmin: %w", err)
	}
	s.record(ctx, c, "trip.admin_removed", domain.EntityTrip, id, map[string]any{"user_id": userID.String()})
	return result, nil
}

// Delete hard-deletes a trip with its gear, assignments, attendance and
// admins. Super admins only.
func (s *TripService) Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	if err := policy.Authorize(policy.DeleteTrip, c, policy.Target{}); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.store.Repos().Trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.record(ctx, c, "trip.deleted", domain.EntityTrip, id, nil)
	return nil
}

// checkVisible hides draft trips from callers who may not see them.
func checkVisible(c domain.Caller, trip domain.Trip) error {
	if !trip.Draft {
		return nil
	}
	if err := policy.Authorize(policy.ViewDraft, c, policy.ForTrip(trip)); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return fmt.Errorf("trip %s: %w", trip.ID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// requireAdults fails with domain.ErrValidation naming every id that does
// not resolve to an adult user.
func requireAdults(ctx context.Context, users repo.UserRepo, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := users.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	adults := make(map[uuid.UUID]bool, len(found))
	for _, u := range found {
		if u.Type == domain.UserAdult {
			adults[u.ID] = true
		}
	}
	var bad []string
	for _, id := range ids {
		if !adults[id] {
			bad = append(bad, id.String())
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %d admin id(s) do not belong to an adult user: %s",
			domain.ErrValidation, len(bad), strings.Join(bad, ", "))
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
