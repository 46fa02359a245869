package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/policy"
	"github.com/pkordes/tripplanner/internal/repo"
)

// FamilyService handles family registration and approval.
type FamilyService struct {
	deps
	store repo.Store
}

// NewFamilyService constructs a FamilyService.
func NewFamilyService(store repo.Store, act activity.Logger, now Clock) *FamilyService {
	return &FamilyService{deps: newDeps(act, now), store: store}
}

// Register creates a family in PENDING status together with its members.
// Any authenticated caller may register one; it cannot attend trips until a
// super admin approves it. At least one member must be an adult.
func (s *FamilyService) Register(ctx context.Context, c domain.Caller, name string, members []domain.MemberInput) (domain.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Register: %w: name is required", domain.ErrValidation)
	}
	members, err := normalizeMembers(members)
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Register: %w", err)
	}
	if !slices.ContainsFunc(members, func(m domain.MemberInput) bool { return m.Type == domain.UserAdult }) {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Register: %w: a family needs at least one adult member",
			domain.ErrValidation)
	}

	var f domain.Family
	err = s.store.InTx(ctx, func(r repo.Repos) error {
		var err error
		f, err = r.Families.Create(ctx, domain.Family{
			Name:     name,
			Status:   domain.FamilyPending,
			IsActive: true,
		})
		if err != nil {
			return err
		}
		f.Members = make([]domain.User, 0, len(members))
		for _, m := range members {
			u, err := r.Users.Create(ctx, domain.User{FamilyID: &f.ID, Name: m.Name, Type: m.Type})
			if err != nil {
				return err
			}
			f.Members = append(f.Members, u)
		}
		return nil
	})
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Register: %w", err)
	}
	s.record(ctx, c, "family.registered", domain.EntityFamily, f.ID, map[string]any{
		"name":    f.Name,
		"members": len(f.Members),
	})
	return f, nil
}

// AddMember adds an adult or child to a family. Allowed for the family's own
// adults and for super admins.
func (s *FamilyService) AddMember(ctx context.Context, c domain.Caller, familyID uuid.UUID, m domain.MemberInput) (domain.User, error) {
	if err := policy.Authorize(policy.ManageMembers, c, policy.ForFamily(familyID)); err != nil {
		return domain.User{}, fmt.Errorf("service.FamilyService.AddMember: %w", err)
	}
	normalized, err := normalizeMembers([]domain.MemberInput{m})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.FamilyService.AddMember: %w", err)
	}

	var u domain.User
	err = s.store.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Families.GetByID(ctx, familyID); err != nil {
			return err
		}
		var err error
		u, err = r.Users.Create(ctx, domain.User{FamilyID: &familyID, Name: normalized[0].Name, Type: normalized[0].Type})
		return err
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.FamilyService.AddMember: %w", err)
	}
	s.record(ctx, c, "family.member_added", domain.EntityFamily, familyID, map[string]any{
		"user_id": u.ID.String(),
		"type":    string(u.Type),
	})
	return u, nil
}

// GetByID returns a family with its members. Callers other than super admins
// may only read their own family.
func (s *FamilyService) GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	if err := policy.Authorize(policy.ViewFamily, c, policy.ForFamily(id)); err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.GetByID: %w", err)
	}
	r := s.store.Repos()
	f, err := r.Families.GetByID(ctx, id)
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.GetByID: %w", err)
	}
	if f.Members, err = r.Users.ListByFamily(ctx, id); err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.GetByID: %w", err)
	}
	return f, nil
}

// Approve moves a family to APPROVED. Super admins only.
// Returns domain.ErrAlreadyInState if it is already approved.
func (s *FamilyService) Approve(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	f, err := s.transition(ctx, c, id, func(f domain.Family) (domain.Family, error) {
		if f.Status == domain.FamilyApproved {
			return f, fmt.Errorf("%w: family %s is already approved", domain.ErrAlreadyInState, id)
		}
		f.Status = domain.FamilyApproved
		return f, nil
	})
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Approve: %w", err)
	}
	s.record(ctx, c, "family.approved", domain.EntityFamily, id, nil)
	return f, nil
}

// Reject moves a family to REJECTED. Super admins only.
// Returns domain.ErrAlreadyInState if it is already rejected.
func (s *FamilyService) Reject(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	f, err := s.transition(ctx, c, id, func(f domain.Family) (domain.Family, error) {
		if f.Status == domain.FamilyRejected {
			return f, fmt.Errorf("%w: family %s is already rejected", domain.ErrAlreadyInState, id)
		}
		f.Status = domain.FamilyRejected
		return f, nil
	})
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.Reject: %w", err)
	}
	s.record(ctx, c, "family.rejected", domain.EntityFamily, id, nil)
	return f, nil
}

// SetActive activates or deactivates a family. Super admins only.
// Setting the current value again is a no-op.
func (s *FamilyService) SetActive(ctx context.Context, c domain.Caller, id uuid.UUID, active bool) (domain.Family, error) {
	f, err := s.transition(ctx, c, id, func(f domain.Family) (domain.Family, error) {
		f.IsActive = active
		return f, nil
	})
	if err != nil {
		return domain.Family{}, fmt.Errorf("service.FamilyService.SetActive: %w", err)
	}
	s.record(ctx, c, "family.active_set", domain.EntityFamily, id, map[string]any{"is_active": active})
	return f, nil
}

// Delete removes a family with its users, attendance and gear assignments.
// Super admins only. Fails with domain.ErrPrecondition when the family's
// adults are the only admins of a published trip.
func (s *FamilyService) Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	if err := policy.Authorize(policy.ManageFamily, c, policy.Target{}); err != nil {
		return fmt.Errorf("service.FamilyService.Delete: %w", err)
	}
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Families.GetByID(ctx, id); err != nil {
			return err
		}
		if err := requireOtherAdmins(ctx, r, id); err != nil {
			return err
		}
		return r.Families.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.FamilyService.Delete: %w", err)
	}
	s.record(ctx, c, "family.deleted", domain.EntityFamily, id, nil)
	return nil
}

// requireOtherAdmins locks every trip administered by a member of familyID
// and fails if removing those members would leave a published trip without
// an admin.
func requireOtherAdmins(ctx context.Context, r repo.Repos, familyID uuid.UUID) error {
	members, err := r.Users.ListByFamily(ctx, familyID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	memberIDs := make([]uuid.UUID, len(members))
	for i, u := range members {
		memberIDs[i] = u.ID
	}
	tripIDs, err := r.Trips.ListAdministeredBy(ctx, memberIDs)
	if err != nil {
		return err
	}

	var stranded []string
	for _, tripID := range tripIDs {
		trip, err := r.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Draft {
			continue
		}
		others := slices.DeleteFunc(slices.Clone(trip.Admins), func(a uuid.UUID) bool {
			return slices.Contains(memberIDs, a)
		})
		if len(others) == 0 {
			stranded = append(stranded, trip.ID.String())
		}
	}
	if len(stranded) > 0 {
		return fmt.Errorf("%w: deleting family %s would leave published trips without an admin: %s",
			domain.ErrPrecondition, familyID, strings.Join(stranded, ", "))
	}
	return nil
}

// normalizeMembers trims names and rejects blank names and unknown types.
func normalizeMembers(in []domain.MemberInput) ([]domain.MemberInput, error) {
	out := make([]domain.MemberInput, len(in))
	for i, m := range in {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("%w: member %d: name is required", domain.ErrValidation, i+1)
		}
		if !m.Type.Valid() {
			return nil, fmt.Errorf("%w: member %d: type must be %q or %q, got %q",
				domain.ErrValidation, i+1, domain.UserAdult, domain.UserChild, m.Type)
		}
		out[i] = m
	}
	return out, nil
}

func (s *FamilyService) transition(ctx context.Context, c domain.Caller, id uuid.UUID, next func(domain.Family) (domain.Family, error)) (domain.Family, error) {
	if err := policy.Authorize(policy.ManageFamily, c, policy.Target{}); err != nil {
		return domain.Family{}, err
	}

	var result domain.Family
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		f, err := r.Families.GetByID(ctx, id)
		if err != nil {
			return err
		}
		f, err = next(f)
		if err != nil {
			return err
		}
		result, err = r.Families.UpdateState(ctx, id, f.Status, f.IsActive)
		return err
	})
	return result, err
}
