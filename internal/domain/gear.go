package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GearItem is a named supply need for a trip with a fixed total quantity.
// Families pledge partial quantities against it; the pledges never add up to
// more than QuantityNeeded.
type GearItem struct {
	ID             uuid.UUID
	TripID         uuid.UUID
	Name           string
	QuantityNeeded int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Assignments is populated by reads that hydrate the item.
	Assignments []GearAssignment
}

// MaxQuantity is the largest quantity a gear item may need or a family may
// pledge. Quantities are stored in INTEGER columns.
const MaxQuantity = math.MaxInt32

// GearItemPatch carries a partial gear item update. Nil fields are unchanged.
type GearItemPatch struct {
	Name           *string
	QuantityNeeded *int
}

// GearAssignment is one family's pledge toward a gear item.
// Identity is (GearItemID, FamilyID); a second pledge replaces the first.
type GearAssignment struct {
	GearItemID uuid.UUID
	FamilyID   uuid.UUID
	FamilyName string // read-side only
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalAssigned sums the pledged quantities of the item's assignments.
func (g GearItem) TotalAssigned() int {
	total := 0
	for _, a := range g.Assignments {
		total += a.Quantity
	}
	return total
}

// AssignedExcluding sums the pledged quantities of every family except
// familyID. Used to check a family's replacement pledge against capacity.
func (g GearItem) AssignedExcluding(familyID uuid.UUID) int {
	total := 0
	for _, a := range g.Assignments {
		if a.FamilyID != familyID {
			total += a.Quantity
		}
	}
	return total
}

// GearStatus classifies how much of a gear item has been pledged.
type GearStatus string

const (
	GearUnassigned GearStatus = "unassigned"
	GearPartial    GearStatus = "partial"
	GearComplete   GearStatus = "complete"
)

// GearSummary is the read-only projection of a gear item's pledges.
// It is recomputed from assignments on every read and never stored.
type GearSummary struct {
	Item          GearItem
	TotalAssigned int
	Remaining     int
	Status        GearStatus
}

// Summarize derives the GearSummary of a hydrated gear item.
func Summarize(item GearItem) GearSummary {
	total := item.TotalAssigned()
	s := GearSummary{
		Item:          item,
		TotalAssigned: total,
		Remaining:     max(item.QuantityNeeded-total, 0),
	}
	switch {
	case total == 0:
		s.Status = GearUnassigned
	case total < item.QuantityNeeded:
		s.Status = GearPartial
	default:
		s.Status = GearComplete
	}
	return s
}
