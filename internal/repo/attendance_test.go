package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
)

func TestAttendanceRepo_UpsertIsIdempotent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := createTrip(t, r)
	f := createFamily(t, r, "Garcia", domain.FamilyApproved)

	require.NoError(t, r.Attendance.Upsert(ctx, trip.ID, f.ID))
	require.NoError(t, r.Attendance.Upsert(ctx, trip.ID, f.ID))

	got, err := r.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.ID}, got.Attendees)
}

func TestAttendanceRepo_DeleteReportsExistence(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := createTrip(t, r)
	f := createFamily(t, r, "Garcia", domain.FamilyApproved)
	require.NoError(t, r.Attendance.Upsert(ctx, trip.ID, f.ID))

	existed, err := r.Attendance.Delete(ctx, trip.ID, f.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = r.Attendance.Delete(ctx, trip.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, existed, "a missing record is not an error")

	attending, err := r.Attendance.Exists(ctx, trip.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, attending)
}

func TestAttendanceRepo_ListFamilies_OrderedByName(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := createTrip(t, r)
	for _, name := range []string{"Smith", "Garcia", "Lee"} {
		f := createFamily(t, r, name, domain.FamilyApproved)
		require.NoError(t, r.Attendance.Upsert(ctx, trip.ID, f.ID))
	}
	createFamily(t, r, "Absent", domain.FamilyApproved)

	got, err := r.Attendance.ListFamilies(ctx, trip.ID)

	require.NoError(t, err)
	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"Garcia", "Lee", "Smith"}, names)
}
