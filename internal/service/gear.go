package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/policy"
	"github.com/pkordes/tripplanner/internal/repo"
)

// GearService manages a trip's gear items and the families' pledges
// against them.
//
// Every pledge change locks the gear item row first (repo.GearRepo.LockItem)
// so that concurrent pledges on the same item are checked against capacity
// one after another. The sum of pledges never exceeds QuantityNeeded.
type GearService struct {
	deps
	store repo.Store
}

// NewGearService constructs a GearService.
func NewGearService(store repo.Store, act activity.Logger, now Clock) *GearService {
	return &GearService{deps: newDeps(act, now), store: store}
}

// CreateItem adds a gear item to a trip. Super admins and the trip's admins only.
func (s *GearService) CreateItem(ctx context.Context, c domain.Caller, tripID uuid.UUID, name string, quantityNeeded int) (domain.GearItem, error) {
	r := s.store.Repos()
	trip, err := r.Trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.CreateItem: %w", err)
	}
	if err := policy.Authorize(policy.ManageGear, c, policy.ForTrip(trip)); err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.CreateItem: %w", err)
	}
	item := domain.GearItem{TripID: tripID, Name: strings.TrimSpace(name), QuantityNeeded: quantityNeeded}
	if err := validateGearItem(item); err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.CreateItem: %w", err)
	}

	created, err := r.Gear.CreateItem(ctx, item)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.CreateItem: %w", err)
	}
	s.record(ctx, c, "gear.created", domain.EntityGearItem, created.ID, map[string]any{
		"trip_id":         tripID.String(),
		"quantity_needed": quantityNeeded,
	})
	return created, nil
}

// GetItem returns a gear item with its assignments.
func (s *GearService) GetItem(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.GearItem, error) {
	r := s.store.Repos()
	item, err := r.Gear.GetItem(ctx, id)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.GetItem: %w", err)
	}
	trip, err := r.Trips.GetByID(ctx, item.TripID)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.GetItem: %w", err)
	}
	if err := checkVisible(c, trip); err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.GetItem: %w", err)
	}
	return item, nil
}

// UpdateItem renames an item or changes its quantity. The quantity may not
// drop below what is already pledged (domain.ErrCapacity).
func (s *GearService) UpdateItem(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.GearItemPatch) (domain.GearItem, error) {
	var result domain.GearItem
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		item, trip, err := lockItemAndTrip(ctx, r, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(policy.ManageGear, c, policy.ForTrip(trip)); err != nil {
			return err
		}

		if patch.Name != nil {
			item.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.QuantityNeeded != nil {
			item.QuantityNeeded = *patch.QuantityNeeded
		}
		if err := validateGearItem(item); err != nil {
			return err
		}
		if assigned := item.TotalAssigned(); item.QuantityNeeded < assigned {
			return fmt.Errorf("%w: quantity needed %d is below the %d already assigned; minimum is %d",
				domain.ErrCapacity, item.QuantityNeeded, assigned, assigned)
		}
		result, err = r.Gear.UpdateItem(ctx, item)
		return err
	})
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.UpdateItem: %w", err)
	}
	s.record(ctx, c, "gear.updated", domain.EntityGearItem, id, nil)
	return result, nil
}

// DeleteItem removes an item together with its assignments.
func (s *GearService) DeleteItem(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		_, trip, err := lockItemAndTrip(ctx, r, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(policy.ManageGear, c, policy.ForTrip(trip)); err != nil {
			return err
		}
		return r.Gear.DeleteItem(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.GearService.DeleteItem: %w", err)
	}
	s.record(ctx, c, "gear.deleted", domain.EntityGearItem, id, nil)
	return nil
}

// Assign sets familyID's pledge on a gear item to quantity, replacing any
// earlier pledge by the same family. Returns the hydrated item.
//
// Fails with domain.ErrPrecondition when the trip is a draft, has started,
// or the family is not an approved, active attendee, and with
// domain.ErrCapacity when the pledges would exceed the quantity needed.
func (s *GearService) Assign(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID, quantity int) (domain.GearItem, error) {
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return domain.GearItem{}, fmt.Errorf("service.GearService.Assign: %w: quantity must be between 1 and %d, got %d",
			domain.ErrValidation, domain.MaxQuantity, quantity)
	}

	var result domain.GearItem
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		item, trip, err := lockItemAndTrip(ctx, r, itemID)
		if err != nil {
			return err
		}
		if err := s.checkPledgesOpen(trip); err != nil {
			return err
		}
		if err := policy.Authorize(policy.PledgeGear, c, policy.ForTripFamily(trip, familyID)); err != nil {
			return err
		}
		if err := requireParticipating(ctx, r.Families, familyID); err != nil {
			return err
		}
		attending, err := r.Attendance.Exists(ctx, trip.ID, familyID)
		if err != nil {
			return err
		}
		if !attending {
			return fmt.Errorf("%w: family %s is not attending trip %s", domain.ErrPrecondition, familyID, trip.ID)
		}

		others := item.AssignedExcluding(familyID)
		if quantity > item.QuantityNeeded-others {
			return fmt.Errorf("%w: cannot assign more than needed: requested %d, %d of %d still available",
				domain.ErrCapacity, quantity, item.QuantityNeeded-others, item.QuantityNeeded)
		}

		err = r.Gear.UpsertAssignment(ctx, domain.GearAssignment{
			GearItemID: itemID,
			FamilyID:   familyID,
			Quantity:   quantity,
		})
		if err != nil {
			return err
		}
		result, err = r.Gear.GetItem(ctx, itemID)
		return err
	})
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.Assign: %w", err)
	}
	s.record(ctx, c, "gear.assigned", domain.EntityGearItem, itemID, map[string]any{
		"family_id": familyID.String(),
		"quantity":  quantity,
	})
	return result, nil
}

// RemoveAssignment deletes familyID's pledge on a gear item.
// Returns domain.ErrNotFound when the family has no pledge on it.
func (s *GearService) RemoveAssignment(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID) (domain.GearItem, error) {
	var result domain.GearItem
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		_, trip, err := lockItemAndTrip(ctx, r, itemID)
		if err != nil {
			return err
		}
		if err := s.checkPledgesOpen(trip); err != nil {
			return err
		}
		if err := policy.Authorize(policy.PledgeGear, c, policy.ForTripFamily(trip, familyID)); err != nil {
			return err
		}
		if err := r.Gear.DeleteAssignment(ctx, itemID, familyID); err != nil {
			return fmt.Errorf("family %s has no assignment on gear item %s: %w", familyID, itemID, err)
		}
		result, err = r.Gear.GetItem(ctx, itemID)
		return err
	})
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("service.GearService.RemoveAssignment: %w", err)
	}
	s.record(ctx, c, "gear.unassigned", domain.EntityGearItem, itemID, map[string]any{
		"family_id": familyID.String(),
	})
	return result, nil
}

// Summary returns the pledge summary of every gear item on a trip, ordered
// by item name.
func (s *GearService) Summary(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.GearSummary, error) {
	r := s.store.Repos()
	trip, err := r.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.GearService.Summary: %w", err)
	}
	if err := checkVisible(c, trip); err != nil {
		return nil, fmt.Errorf("service.GearService.Summary: %w", err)
	}
	items, err := r.Gear.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.GearService.Summary: %w", err)
	}

	out := make([]domain.GearSummary, 0, len(items))
	for _, item := range items {
		out = append(out, domain.Summarize(item))
	}
	return out, nil
}

// checkPledgesOpen rejects pledge changes on drafts and on trips that have
// started.
func (s *GearService) checkPledgesOpen(trip domain.Trip) error {
	if trip.Draft {
		return fmt.Errorf("%w: trip %s is a draft and does not take gear pledges", domain.ErrPrecondition, trip.ID)
	}
	if trip.Timing(s.now()).Started {
		return fmt.Errorf("%w: trip %s has already started; gear assignments are closed", domain.ErrPrecondition, trip.ID)
	}
	return nil
}

// lockItemAndTrip locks the gear item row and loads its trip.
func lockItemAndTrip(ctx context.Context, r repo.Repos, itemID uuid.UUID) (domain.GearItem, domain.Trip, error) {
	item, err := r.Gear.LockItem(ctx, itemID)
	if err != nil {
		return domain.GearItem{}, domain.Trip{}, fmt.Errorf("gear item %s: %w", itemID, err)
	}
	trip, err := r.Trips.GetByID(ctx, item.TripID)
	if err != nil {
		return domain.GearItem{}, domain.Trip{}, fmt.Errorf("trip %s: %w", item.TripID, err)
	}
	return item, trip, nil
}

func validateGearItem(item domain.GearItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if item.QuantityNeeded <= 0 || item.QuantityNeeded > domain.MaxQuantity {
		return fmt.Errorf("%w: quantity needed must be between 1 and %d, got %d",
			domain.ErrValidation, domain.MaxQuantity, item.QuantityNeeded)
	}
	return nil
}
