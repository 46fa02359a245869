package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/repo"
	"github.com/pkordes/tripplanner/testutil"
)

// newTestRepos opens a transaction against the test database and returns
// repos bound to it. The transaction is rolled back when the test finishes,
// giving free per-test isolation.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewRepos(tx)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// tripFixture returns a draft trip with sensible defaults. Callers override
// fields after calling it.
func tripFixture() domain.Trip {
	cutoff := date(2025, 7, 1)
	return domain.Trip{
		Name:             "Lake Weekend",
		Location:         "Pine Lake",
		Description:      "Bring swimsuits",
		StartDate:        date(2025, 7, 15),
		EndDate:          date(2025, 7, 20),
		AttendanceCutoff: &cutoff,
		Draft:            true,
	}
}

func createTrip(t *testing.T, r repo.Repos, mutate ...func(*domain.Trip)) domain.Trip {
	t.Helper()
	in := tripFixture()
	for _, m := range mutate {
		m(&in)
	}
	got, err := r.Trips.Create(context.Background(), in)
	require.NoError(t, err)
	return got
}

func createFamily(t *testing.T, r repo.Repos, name string, status domain.FamilyStatus) domain.Family {
	t.Helper()
	f, err := r.Families.Create(context.Background(), domain.Family{Name: name, Status: status, IsActive: true})
	require.NoError(t, err)
	return f
}

func createAdult(t *testing.T, r repo.Repos, familyID *uuid.UUID) domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), domain.User{FamilyID: familyID, Name: "Pat", Type: domain.UserAdult})
	require.NoError(t, err)
	return u
}
