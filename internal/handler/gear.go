package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
)

// CreateGearItemRequest is the body of POST /trips/{id}/gear.
type CreateGearItemRequest struct {
	Name           string `json:"name"`
	QuantityNeeded int    `json:"quantity_needed"`
}

// UpdateGearItemRequest is the body of PATCH /gear/{id}.
type UpdateGearItemRequest struct {
	Name           *string `json:"name,omitempty"`
	QuantityNeeded *int    `json:"quantity_needed,omitempty"`
}

// AssignGearRequest is the body of PUT /gear/{id}/assignments/{familyID}.
type AssignGearRequest struct {
	Quantity int `json:"quantity"`
}

// GearAssignment is one family's pledge on the wire.
type GearAssignment struct {
	FamilyID   openapi_types.UUID `json:"family_id"`
	FamilyName string             `json:"family_name"`
	Quantity   int                `json:"quantity"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// GearItem is the wire representation of a gear item with its pledge summary.
type GearItem struct {
	ID             openapi_types.UUID `json:"id"`
	TripID         openapi_types.UUID `json:"trip_id"`
	Name           string             `json:"name"`
	QuantityNeeded int                `json:"quantity_needed"`
	TotalAssigned  int                `json:"total_assigned"`
	Remaining      int                `json:"remaining"`
	Status         domain.GearStatus  `json:"status"`
	Assignments    []GearAssignment   `json:"assignments"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// CreateGearItem handles POST /trips/{id}/gear.
func (s *Server) CreateGearItem(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body CreateGearItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	item, err := s.gear.CreateItem(r.Context(), c, tripID, body.Name, body.QuantityNeeded)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gearItemToResponse(item))
}

// GearSummary handles GET /trips/{id}/gear.
// Returns every item on the trip with totals, remaining quantity and status.
func (s *Server) GearSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sums, err := s.gear.Summary(r.Context(), c, tripID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]GearItem, len(sums))
	for i, sum := range sums {
		out[i] = summaryToResponse(sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGearItem handles GET /gear/{id}.
func (s *Server) GetGearItem(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	item, err := s.gear.GetItem(r.Context(), c, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearItemToResponse(item))
}

// UpdateGearItem handles PATCH /gear/{id}.
func (s *Server) UpdateGearItem(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body UpdateGearItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	item, err := s.gear.UpdateItem(r.Context(), c, id, domain.GearItemPatch{
		Name:           body.Name,
		QuantityNeeded: body.QuantityNeeded,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearItemToResponse(item))
}

// DeleteGearItem handles DELETE /gear/{id}.
func (s *Server) DeleteGearItem(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.gear.DeleteItem(r.Context(), c, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignGear handles PUT /gear/{id}/assignments/{familyID}.
// The quantity replaces any earlier pledge by the same family.
func (s *Server) AssignGear(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	familyID, ok := pathUUID(w, r, "familyID")
	if !ok {
		return
	}
	var body AssignGearRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	item, err := s.gear.Assign(r.Context(), c, itemID, familyID, body.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearItemToResponse(item))
}

// RemoveGearAssignment handles DELETE /gear/{id}/assignments/{familyID}.
func (s *Server) RemoveGearAssignment(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	familyID, ok := pathUUID(w, r, "familyID")
	if !ok {
		return
	}

	item, err := s.gear.RemoveAssignment(r.Context(), c, itemID, familyID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearItemToResponse(item))
}

// --- mapping helpers --------------------------------------------------------

func gearItemToResponse(item domain.GearItem) GearItem {
	return summaryToResponse(domain.Summarize(item))
}

func summaryToResponse(sum domain.GearSummary) GearItem {
	assignments := make([]GearAssignment, len(sum.Item.Assignments))
	for i, a := range sum.Item.Assignments {
		assignments[i] = GearAssignment{
			FamilyID:   a.FamilyID,
			FamilyName: a.FamilyName,
			Quantity:   a.Quantity,
			UpdatedAt:  a.UpdatedAt,
		}
	}
	return GearItem{
		ID:             sum.Item.ID,
		TripID:         sum.Item.TripID,
		Name:           sum.Item.Name,
		QuantityNeeded: sum.Item.QuantityNeeded,
		TotalAssigned:  sum.TotalAssigned,
		Remaining:      sum.Remaining,
		Status:         sum.Status,
		Assignments:    assignments,
		CreatedAt:      sum.Item.CreatedAt,
		UpdatedAt:      sum.Item.UpdatedAt,
	}
}
