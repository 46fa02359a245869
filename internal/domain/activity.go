package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEntry records one successful mutation for the audit trail.
type ActivityEntry struct {
	ActorID    uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Metadata   map[string]any
	At         time.Time
}

// Entity types written to the activity log.
const (
	EntityTrip       = "trip"
	EntityFamily     = "family"
	EntityGearItem   = "gear_item"
	EntityAttendance = "attendance"
)
