package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDraftTrip(t *testing.T) {
	got := domain.NewDraftTrip(domain.TripInput{
		Name:      "  Lake Weekend ",
		Location:  " Pine Lake",
		StartDate: day(15),
		EndDate:   day(20),
	})

	assert.True(t, got.Draft)
	assert.Equal(t, "Lake Weekend", got.Name)
	assert.Equal(t, "Pine Lake", got.Location)
	assert.Empty(t, got.Admins)
	require.NoError(t, got.Validate())
}

func TestTrip_Validate(t *testing.T) {
	valid := domain.Trip{Name: "n", Location: "l", StartDate: day(15), EndDate: day(20)}
	cutoffOnStart := day(15)
	cutoffAfter := day(16)

	tests := []struct {
		name    string
		mutate  func(*domain.Trip)
		wantErr bool
	}{
		{name: "valid", mutate: func(*domain.Trip) {}},
		{name: "same day", mutate: func(tr *domain.Trip) { tr.EndDate = tr.StartDate }},
		{name: "cutoff on start", mutate: func(tr *domain.Trip) { tr.AttendanceCutoff = &cutoffOnStart }},
		{name: "cutoff after start", mutate: func(tr *domain.Trip) { tr.AttendanceCutoff = &cutoffAfter }, wantErr: true},
		{name: "end before start", mutate: func(tr *domain.Trip) { tr.EndDate = day(14) }, wantErr: true},
		{name: "blank name", mutate: func(tr *domain.Trip) { tr.Name = " " }, wantErr: true},
		{name: "blank location", mutate: func(tr *domain.Trip) { tr.Location = "" }, wantErr: true},
		{name: "no end date", mutate: func(tr *domain.Trip) { tr.EndDate = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			err := tr.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTripPatch_Apply(t *testing.T) {
	cutoff := day(1)
	orig := domain.Trip{
		ID:               uuid.New(),
		Name:             "Old",
		Location:         "Here",
		StartDate:        day(15),
		EndDate:          day(20),
		AttendanceCutoff: &cutoff,
	}
	name := " New "
	end := day(22)

	got := domain.TripPatch{Name: &name, EndDate: &end}.Apply(orig)

	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "Here", got.Location)
	assert.Equal(t, day(22), got.EndDate)
	assert.Equal(t, &cutoff, got.AttendanceCutoff)
	assert.Equal(t, "Old", orig.Name)

	cleared := domain.TripPatch{ClearAttendanceCutoff: true, AttendanceCutoff: &end}.Apply(orig)
	assert.Nil(t, cleared.AttendanceCutoff)
}

func TestTrip_IsAdmin(t *testing.T) {
	a := uuid.New()
	tr := domain.Trip{Admins: []uuid.UUID{a}}

	assert.True(t, tr.IsAdmin(a))
	assert.False(t, tr.IsAdmin(uuid.New()))
}
