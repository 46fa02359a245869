package domain

import "time"

// TripPhase is the coarse time-derived status of a trip.
type TripPhase string

const (
	PhaseUpcoming TripPhase = "upcoming"
	PhaseActive   TripPhase = "active"
	PhasePast     TripPhase = "past"
)

// TripTiming is the time-derived state of a trip at one instant.
// Every gate in the service layer reads it from here instead of comparing
// timestamps itself.
type TripTiming struct {
	Phase TripPhase
	// Started is true from the start instant onwards. Gear pledges close and
	// ordinary admins can no longer edit the trip.
	Started bool
	// CutoffPassed is true strictly after the attendance cutoff. Once true,
	// attendance can neither be marked nor withdrawn.
	CutoffPassed bool
}

// TimingAt computes the TripTiming of a trip at now. It is a pure function.
//
//	now <  start        upcoming
//	start <= now <= end active
//	now >  end          past
//
// A nil cutoff never passes on its own; the start gate still applies to gear.
func TimingAt(now, start, end time.Time, cutoff *time.Time) TripTiming {
	t := TripTiming{
		Started:      !now.Before(start),
		CutoffPassed: cutoff != nil && now.After(*cutoff),
	}
	switch {
	case now.Before(start):
		t.Phase = PhaseUpcoming
	case now.After(end):
		t.Phase = PhasePast
	default:
		t.Phase = PhaseActive
	}
	return t
}
