// Package memstore is an in-memory implementation of repo.Store used by the
// service tests. It keeps the Postgres semantics the services rely on: not
// found errors, upsert-replace on composite keys, cascades, and per-row
// locks held until the end of InTx.
//
// Writes are applied immediately and are not rolled back when the InTx
// callback fails. The services validate before they write, so a failing
// operation leaves no partial state in practice.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/repo"
)

// Store is the in-memory repo.Store.
type Store struct {
	mu sync.Mutex

	trips       map[uuid.UUID]domain.Trip
	admins      map[uuid.UUID]map[uuid.UUID]struct{} // trip -> users
	families    map[uuid.UUID]domain.Family
	users       map[uuid.UUID]domain.User
	attendance  map[uuid.UUID]map[uuid.UUID]struct{} // trip -> families
	items       map[uuid.UUID]domain.GearItem
	assignments map[uuid.UUID]map[uuid.UUID]domain.GearAssignment // item -> family -> pledge
	activity    []domain.ActivityEntry

	rowLocks map[uuid.UUID]*sync.Mutex
}

// compile-time check: *Store must satisfy repo.Store.
var _ repo.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		trips:       map[uuid.UUID]domain.Trip{},
		admins:      map[uuid.UUID]map[uuid.UUID]struct{}{},
		families:    map[uuid.UUID]domain.Family{},
		users:       map[uuid.UUID]domain.User{},
		attendance:  map[uuid.UUID]map[uuid.UUID]struct{}{},
		items:       map[uuid.UUID]domain.GearItem{},
		assignments: map[uuid.UUID]map[uuid.UUID]domain.GearAssignment{},
		rowLocks:    map[uuid.UUID]*sync.Mutex{},
	}
}

// Repos returns repos that run outside any transaction; row locks are no-ops.
func (s *Store) Repos() repo.Repos {
	return s.repos(nil)
}

// InTx runs fn with repos bound to a fresh transaction. Row locks taken
// through GetForUpdate or LockItem are released when fn returns.
func (s *Store) InTx(ctx context.Context, fn func(repo.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{held: map[uuid.UUID]*sync.Mutex{}}
	defer t.release()
	return fn(s.repos(t))
}

// Activity returns a copy of the entries written through ActivityRepo.
func (s *Store) Activity() []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActivityEntry, len(s.activity))
	copy(out, s.activity)
	return out
}

func (s *Store) repos(t *tx) repo.Repos {
	return repo.Repos{
		Trips:      &tripRepo{s: s, tx: t},
		Families:   &familyRepo{s: s},
		Users:      &userRepo{s: s},
		Attendance: &attendanceRepo{s: s},
		Gear:       &gearRepo{s: s, tx: t},
		Activity:   &activityRepo{s: s},
	}
}

// tx tracks the row locks one InTx call holds.
type tx struct {
	held map[uuid.UUID]*sync.Mutex
}

func (t *tx) release() {
	for _, m := range t.held {
		m.Unlock()
	}
}

// lockRow blocks until the row lock for id is free, then holds it for the
// rest of the transaction. Outside a transaction it does nothing.
func (s *Store) lockRow(t *tx, id uuid.UUID) {
	if t == nil {
		return
	}
	if _, ok := t.held[id]; ok {
		return
	}
	s.mu.Lock()
	m, ok := s.rowLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.rowLocks[id] = m
	}
	s.mu.Unlock()

	m.Lock()
	t.held[id] = m
}

func now() time.Time {
	return time.Now().UTC()
}
