package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/repo"
)

// ---- trips -----------------------------------------------------------------

type tripRepo struct {
	s  *Store
	tx *tx
}

var _ repo.TripRepo = (*tripRepo)(nil)

func (r *tripRepo) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = uuid.New()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	t.Admins, t.Attendees = nil, nil
	r.s.trips[t.ID] = t
	return r.s.hydrateTrip(t), nil
}

func (r *tripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getTrip(id)
}

func (r *tripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.lockRow(r.tx, id)
	return r.GetByID(ctx, id)
}

func (r *tripRepo) ListPaged(_ context.Context, f repo.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var visible []domain.Trip
	for _, t := range r.s.trips {
		t = r.s.hydrateTrip(t)
		switch {
		case !t.Draft, f.AllDrafts:
		case f.DraftsAdministeredBy != nil && t.IsAdmin(*f.DraftsAdministeredBy):
		default:
			continue
		}
		visible = append(visible, t)
	}
	slices.SortFunc(visible, func(a, b domain.Trip) int {
		if c := b.StartDate.Compare(a.StartDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	total := int64(len(visible))
	start := min(p.Offset(), len(visible))
	end := min(start+p.Limit, len(visible))
	return append([]domain.Trip{}, visible[start:end]...), total, nil
}

func (r *tripRepo) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.trips[t.ID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memstore.TripRepo.Update: %w", domain.ErrNotFound)
	}
	cur.Name = t.Name
	cur.Location = t.Location
	cur.Description = t.Description
	cur.PhotoAlbumLink = t.PhotoAlbumLink
	cur.StartDate = t.StartDate
	cur.EndDate = t.EndDate
	cur.AttendanceCutoff = t.AttendanceCutoff
	cur.UpdatedAt = now()
	r.s.trips[t.ID] = cur
	return r.s.hydrateTrip(cur), nil
}

func (r *tripRepo) SetDraft(_ context.Context, id uuid.UUID, draft bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trips[id]
	if !ok {
		return fmt.Errorf("memstore.TripRepo.SetDraft: %w", domain.ErrNotFound)
	}
	t.Draft = draft
	t.UpdatedAt = now()
	r.s.trips[id] = t
	return nil
}

func (r *tripRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[id]; !ok {
		return fmt.Errorf("memstore.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.trips, id)
	delete(r.s.admins, id)
	delete(r.s.attendance, id)
	for itemID, item := range r.s.items {
		if item.TripID == id {
			delete(r.s.items, itemID)
			delete(r.s.assignments, itemID)
		}
	}
	return nil
}

func (r *tripRepo) ReplaceAdmins(_ context.Context, tripID uuid.UUID, userIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[tripID]; !ok {
		return fmt.Errorf("memstore.TripRepo.ReplaceAdmins: %w", domain.ErrNotFound)
	}
	set := map[uuid.UUID]struct{}{}
	for _, id := range userIDs {
		set[id] = struct{}{}
	}
	r.s.admins[tripID] = set
	return nil
}

func (r *tripRepo) AddAdmin(_ context.Context, tripID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[tripID]; !ok {
		return fmt.Errorf("memstore.TripRepo.AddAdmin: %w", domain.ErrNotFound)
	}
	if r.s.admins[tripID] == nil {
		r.s.admins[tripID] = map[uuid.UUID]struct{}{}
	}
	r.s.admins[tripID][userID] = struct{}{}
	return nil
}

func (r *tripRepo) RemoveAdmin(_ context.Context, tripID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.admins[tripID][userID]; !ok {
		return fmt.Errorf("memstore.TripRepo.RemoveAdmin: %w", domain.ErrNotFound)
	}
	delete(r.s.admins[tripID], userID)
	return nil
}

func (r *tripRepo) ListAdministeredBy(_ context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	trips := map[uuid.UUID]struct{}{}
	for tripID, set := range r.s.admins {
		for _, u := range userIDs {
			if _, ok := set[u]; ok {
				trips[tripID] = struct{}{}
			}
		}
	}
	return sortedIDs(trips), nil
}

// getTrip reads a hydrated trip. Caller holds s.mu.
func (s *Store) getTrip(id uuid.UUID) (domain.Trip, error) {
	t, ok := s.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memstore.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return s.hydrateTrip(t), nil
}

// hydrateTrip fills Admins and Attendees. Caller holds s.mu.
func (s *Store) hydrateTrip(t domain.Trip) domain.Trip {
	t.Admins = sortedIDs(s.admins[t.ID])
	t.Attendees = sortedIDs(s.attendance[t.ID])
	return t
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := slices.Collect(maps.Keys(set))
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// ---- families and users ----------------------------------------------------

type familyRepo struct {
	s *Store
}

var _ repo.FamilyRepo = (*familyRepo)(nil)

func (r *familyRepo) Create(_ context.Context, f domain.Family) (domain.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f.ID = uuid.New()
	f.CreatedAt = now()
	f.UpdatedAt = f.CreatedAt
	r.s.families[f.ID] = f
	return f, nil
}

func (r *familyRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.families[id]
	if !ok {
		return domain.Family{}, fmt.Errorf("memstore.FamilyRepo.GetByID: %w", domain.ErrNotFound)
	}
	return f, nil
}

func (r *familyRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.familiesByID(ids), nil
}

func (r *familyRepo) UpdateState(_ context.Context, id uuid.UUID, status domain.FamilyStatus, isActive bool) (domain.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.families[id]
	if !ok {
		return domain.Family{}, fmt.Errorf("memstore.FamilyRepo.UpdateState: %w", domain.ErrNotFound)
	}
	f.Status = status
	f.IsActive = isActive
	f.UpdatedAt = now()
	r.s.families[id] = f
	return f, nil
}

func (r *familyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.families[id]; !ok {
		return fmt.Errorf("memstore.FamilyRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.families, id)
	for _, set := range r.s.attendance {
		delete(set, id)
	}
	for _, pledges := range r.s.assignments {
		delete(pledges, id)
	}
	for uid, u := range r.s.users {
		if u.FamilyID != nil && *u.FamilyID == id {
			delete(r.s.users, uid)
			for _, set := range r.s.admins {
				delete(set, uid)
			}
		}
	}
	return nil
}

// familiesByID returns known families ordered by name. Caller holds s.mu.
func (s *Store) familiesByID(ids []uuid.UUID) []domain.Family {
	out := []domain.Family{}
	for _, id := range ids {
		if f, ok := s.families[id]; ok {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b domain.Family) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

type userRepo struct {
	s *Store
}

var _ repo.UserRepo = (*userRepo)(nil)

func (r *userRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.ID = uuid.New()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.User{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) ListByFamily(_ context.Context, familyID uuid.UUID) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.User{}
	for _, u := range r.s.users {
		if u.FamilyID != nil && *u.FamilyID == familyID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

// ---- attendance ------------------------------------------------------------

type attendanceRepo struct {
	s *Store
}

var _ repo.AttendanceRepo = (*attendanceRepo)(nil)

func (r *attendanceRepo) Upsert(_ context.Context, tripID, familyID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.attendance[tripID] == nil {
		r.s.attendance[tripID] = map[uuid.UUID]struct{}{}
	}
	r.s.attendance[tripID][familyID] = struct{}{}
	return nil
}

func (r *attendanceRepo) Delete(_ context.Context, tripID, familyID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.attendance[tripID][familyID]
	delete(r.s.attendance[tripID], familyID)
	return ok, nil
}

func (r *attendanceRepo) Exists(_ context.Context, tripID, familyID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.attendance[tripID][familyID]
	return ok, nil
}

func (r *attendanceRepo) ListFamilies(_ context.Context, tripID uuid.UUID) ([]domain.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.familiesByID(slices.Collect(maps.Keys(r.s.attendance[tripID]))), nil
}

// ---- gear ------------------------------------------------------------------

type gearRepo struct {
	s  *Store
	tx *tx
}

var _ repo.GearRepo = (*gearRepo)(nil)

func (r *gearRepo) CreateItem(_ context.Context, item domain.GearItem) (domain.GearItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[item.TripID]; !ok {
		return domain.GearItem{}, fmt.Errorf("memstore.GearRepo.CreateItem: trip: %w", domain.ErrNotFound)
	}
	item.ID = uuid.New()
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt
	item.Assignments = nil
	r.s.items[item.ID] = item
	return r.s.hydrateItem(item), nil
}

func (r *gearRepo) GetItem(_ context.Context, id uuid.UUID) (domain.GearItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return domain.GearItem{}, fmt.Errorf("memstore.GearRepo.GetItem: %w", domain.ErrNotFound)
	}
	return r.s.hydrateItem(item), nil
}

func (r *gearRepo) LockItem(ctx context.Context, id uuid.UUID) (domain.GearItem, error) {
	r.s.lockRow(r.tx, id)
	return r.GetItem(ctx, id)
}

func (r *gearRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.GearItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	items := []domain.GearItem{}
	for _, item := range r.s.items {
		if item.TripID == tripID {
			items = append(items, r.s.hydrateItem(item))
		}
	}
	slices.SortFunc(items, func(a, b domain.GearItem) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return items, nil
}

func (r *gearRepo) UpdateItem(_ context.Context, item domain.GearItem) (domain.GearItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.items[item.ID]
	if !ok {
		return domain.GearItem{}, fmt.Errorf("memstore.GearRepo.UpdateItem: %w", domain.ErrNotFound)
	}
	cur.Name = item.Name
	cur.QuantityNeeded = item.QuantityNeeded
	cur.UpdatedAt = now()
	r.s.items[item.ID] = cur
	return r.s.hydrateItem(cur), nil
}

func (r *gearRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[id]; !ok {
		return fmt.Errorf("memstore.GearRepo.DeleteItem: %w", domain.ErrNotFound)
	}
	delete(r.s.items, id)
	delete(r.s.assignments, id)
	return nil
}

func (r *gearRepo) UpsertAssignment(_ context.Context, a domain.GearAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[a.GearItemID]; !ok {
		return fmt.Errorf("memstore.GearRepo.UpsertAssignment: %w", domain.ErrNotFound)
	}
	if r.s.assignments[a.GearItemID] == nil {
		r.s.assignments[a.GearItemID] = map[uuid.UUID]domain.GearAssignment{}
	}
	ts := now()
	if prev, ok := r.s.assignments[a.GearItemID][a.FamilyID]; ok {
		a.CreatedAt = prev.CreatedAt
	} else {
		a.CreatedAt = ts
	}
	a.UpdatedAt = ts
	r.s.assignments[a.GearItemID][a.FamilyID] = a
	return nil
}

func (r *gearRepo) DeleteAssignment(_ context.Context, itemID, familyID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assignments[itemID][familyID]; !ok {
		return fmt.Errorf("memstore.GearRepo.DeleteAssignment: %w", domain.ErrNotFound)
	}
	delete(r.s.assignments[itemID], familyID)
	return nil
}

// hydrateItem attaches assignments ordered by creation. Caller holds s.mu.
func (s *Store) hydrateItem(item domain.GearItem) domain.GearItem {
	out := []domain.GearAssignment{}
	for _, a := range s.assignments[item.ID] {
		a.FamilyName = s.families[a.FamilyID].Name
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.GearAssignment) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.FamilyID.String(), b.FamilyID.String()))
	})
	item.Assignments = out
	return item
}

// ---- activity --------------------------------------------------------------

type activityRepo struct {
	s *Store
}

var _ repo.ActivityRepo = (*activityRepo)(nil)

func (r *activityRepo) Insert(_ context.Context, e domain.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activity = append(r.s.activity, e)
	return nil
}
