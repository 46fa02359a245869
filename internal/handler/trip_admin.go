package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
)

// AssignAdminsRequest is the body of PUT /trips/{id}/admins.
type AssignAdminsRequest struct {
	UserIDs []openapi_types.UUID `json:"user_ids"`
}

// AddAdminRequest is the body of POST /trips/{id}/admins.
type AddAdminRequest struct {
	UserID openapi_types.UUID `json:"user_id"`
}

// AssignTripAdmins handles PUT /trips/{id}/admins.
func (s *Server) AssignTripAdmins(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body AssignAdminsRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	trip, err := s.trips.AssignAdmins(r.Context(), c, id, body.UserIDs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// AddTripAdmin handles POST /trips/{id}/admins.
func (s *Server) AddTripAdmin(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body AddAdminRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.UserID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "user_id is required")
		return
	}

	trip, err := s.trips.AddAdmin(r.Context(), c, id, body.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// RemoveTripAdmin handles DELETE /trips/{id}/admins/{userID}.
func (s *Server) RemoveTripAdmin(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	trip, err := s.trips.RemoveAdmin(r.Context(), c, id, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// tripTransition runs a body-less state change on the trip named by {id}.
func (s *Server) tripTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error),
) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	trip, err := op(r.Context(), c, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}
