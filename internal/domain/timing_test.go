package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/tripplanner/internal/domain"
)

func TestTimingAt(t *testing.T) {
	start := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		now    time.Time
		cutoff *time.Time
		want   domain.TripTiming
	}{
		{
			name: "well before start",
			now:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			want: domain.TripTiming{Phase: domain.PhaseUpcoming},
		},
		{
			name:   "on cutoff instant",
			now:    cutoff,
			cutoff: &cutoff,
			want:   domain.TripTiming{Phase: domain.PhaseUpcoming},
		},
		{
			name:   "just after cutoff",
			now:    cutoff.Add(time.Nanosecond),
			cutoff: &cutoff,
			want:   domain.TripTiming{Phase: domain.PhaseUpcoming, CutoffPassed: true},
		},
		{
			name: "on start instant",
			now:  start,
			want: domain.TripTiming{Phase: domain.PhaseActive, Started: true},
		},
		{
			name: "on end instant",
			now:  end,
			want: domain.TripTiming{Phase: domain.PhaseActive, Started: true},
		},
		{
			name:   "after end",
			now:    end.Add(time.Hour),
			cutoff: &cutoff,
			want:   domain.TripTiming{Phase: domain.PhasePast, Started: true, CutoffPassed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.TimingAt(tt.now, start, end, tt.cutoff))
		})
	}
}

func TestTimingAt_NilCutoffNeverPasses(t *testing.T) {
	start := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	got := domain.TimingAt(start.AddDate(1, 0, 0), start, start, nil)

	assert.False(t, got.CutoffPassed)
	assert.True(t, got.Started)
}
