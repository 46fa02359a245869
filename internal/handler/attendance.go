package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
)

// MarkAttendanceRequest is the body of PUT /trips/{id}/attendance/{familyID}.
type MarkAttendanceRequest struct {
	Attending *bool `json:"attending"`
}

// Family is the wire representation of a family.
type Family struct {
	ID        openapi_types.UUID  `json:"id"`
	Name      string              `json:"name"`
	Status    domain.FamilyStatus `json:"status"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	// Members is present on single-family reads.
	Members []Member `json:"members,omitempty"`
}

// MarkAttendance handles PUT /trips/{id}/attendance/{familyID}.
// Both attending=true and attending=false are idempotent.
func (s *Server) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	familyID, ok := pathUUID(w, r, "familyID")
	if !ok {
		return
	}
	var body MarkAttendanceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Attending == nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "attending is required")
		return
	}

	trip, err := s.attendance.MarkAttendance(r.Context(), c, tripID, familyID, *body.Attending)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// ListAttendees handles GET /trips/{id}/attendees.
func (s *Server) ListAttendees(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	families, err := s.attendance.ListAttendees(r.Context(), c, tripID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]Family, len(families))
	for i, f := range families {
		out[i] = familyToResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func familyToResponse(f domain.Family) Family {
	return Family{
		ID:        f.ID,
		Name:      f.Name,
		Status:    f.Status,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		Members:   membersToResponse(f.Members),
	}
}

func membersToResponse(us []domain.User) []Member {
	if us == nil {
		return nil
	}
	out := make([]Member, len(us))
	for i, u := range us {
		out[i] = memberToResponse(u)
	}
	return out
}
