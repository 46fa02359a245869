package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/repo"
	"github.com/pkordes/tripplanner/internal/repo/memstore"
	"github.com/pkordes/tripplanner/internal/service"
)

// recordingLogger is a test double for activity.Logger that keeps every entry.
type recordingLogger struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (l *recordingLogger) Log(_ context.Context, e domain.ActivityEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *recordingLogger) actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Action)
	}
	return out
}

// compile-time check: recordingLogger must satisfy activity.Logger.
var _ activity.Logger = (*recordingLogger)(nil)

// mockStore is a hand-written test double for repo.Store.
// Set only the function fields the test needs.
type mockStore struct {
	repos func() repo.Repos
	inTx  func(ctx context.Context, fn func(repo.Repos) error) error
}

func (m *mockStore) Repos() repo.Repos { return m.repos() }
func (m *mockStore) InTx(ctx context.Context, fn func(repo.Repos) error) error {
	return m.inTx(ctx, fn)
}

// compile-time check: mockStore must satisfy repo.Store.
var _ repo.Store = (*mockStore)(nil)

// ---- fixture ---------------------------------------------------------------

// fixture wires every service to one in-memory store and a settable clock.
type fixture struct {
	store *memstore.Store
	log   *recordingLogger
	now   time.Time

	trips      *service.TripService
	attendance *service.AttendanceService
	gear       *service.GearService
	families   *service.FamilyService

	super domain.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		log:   &recordingLogger{},
		now:   date(2025, 6, 1),
		super: domain.Caller{UserID: uuid.New(), Role: domain.RoleSuperAdmin},
	}
	clock := func() time.Time { return f.now }
	f.trips = service.NewTripService(f.store, f.log, clock)
	f.attendance = service.NewAttendanceService(f.store, f.log, clock)
	f.gear = service.NewGearService(f.store, f.log, clock)
	f.families = service.NewFamilyService(f.store, f.log, clock)
	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ctx() context.Context { return context.Background() }

// approvedFamily stores an approved, active family.
func (f *fixture) approvedFamily(t *testing.T, name string) domain.Family {
	t.Helper()
	fam, err := f.store.Repos().Families.Create(ctx(), domain.Family{
		Name:     name,
		Status:   domain.FamilyApproved,
		IsActive: true,
	})
	require.NoError(t, err)
	return fam
}

// adult stores an adult user in familyID, which may be nil for staff.
func (f *fixture) adult(t *testing.T, familyID *uuid.UUID) domain.User {
	t.Helper()
	u, err := f.store.Repos().Users.Create(ctx(), domain.User{
		FamilyID: familyID,
		Name:     "Adult",
		Type:     domain.UserAdult,
	})
	require.NoError(t, err)
	return u
}

// familyCaller stores an adult in fam and returns a FAMILY caller for them.
func (f *fixture) familyCaller(t *testing.T, fam domain.Family) domain.Caller {
	t.Helper()
	id := fam.ID
	u := f.adult(t, &id)
	return domain.Caller{UserID: u.ID, Role: domain.RoleFamily, FamilyID: &id}
}

// tripAdminCaller stores a staff adult and returns a TRIP_ADMIN caller for them.
func (f *fixture) tripAdminCaller(t *testing.T) domain.Caller {
	t.Helper()
	u := f.adult(t, nil)
	return domain.Caller{UserID: u.ID, Role: domain.RoleTripAdmin}
}

func tripInput() domain.TripInput {
	return domain.TripInput{
		Name:      "Lake Weekend",
		Location:  "Pine Lake",
		StartDate: date(2025, 7, 15),
		EndDate:   date(2025, 7, 20),
	}
}

// publishedTrip creates a trip from in, makes admin its only admin and
// publishes it.
func (f *fixture) publishedTrip(t *testing.T, in domain.TripInput, admin uuid.UUID) domain.Trip {
	t.Helper()
	trip, err := f.trips.Create(ctx(), f.super, in)
	require.NoError(t, err)
	_, err = f.trips.AssignAdmins(ctx(), f.super, trip.ID, []uuid.UUID{admin})
	require.NoError(t, err)
	trip, err = f.trips.Publish(ctx(), f.super, trip.ID)
	require.NoError(t, err)
	return trip
}

// attend marks fam as attending trip using fam's own caller.
func (f *fixture) attend(t *testing.T, c domain.Caller, tripID uuid.UUID) {
	t.Helper()
	_, err := f.attendance.MarkAttendance(ctx(), c, tripID, *c.FamilyID, true)
	require.NoError(t, err)
}

// parents builds adult member inputs with the given names.
func parents(names ...string) []domain.MemberInput {
	out := make([]domain.MemberInput, len(names))
	for i, n := range names {
		out[i] = domain.MemberInput{Name: n, Type: domain.UserAdult}
	}
	return out
}
