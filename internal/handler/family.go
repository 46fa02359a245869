package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
)

// MemberRequest describes one person in a family.
type MemberRequest struct {
	Name string          `json:"name"`
	Type domain.UserType `json:"type"`
}

// RegisterFamilyRequest is the body of POST /families.
type RegisterFamilyRequest struct {
	Name    string          `json:"name"`
	Members []MemberRequest `json:"members"`
}

// Member is the wire representation of a family member.
type Member struct {
	ID   openapi_types.UUID `json:"id"`
	Name string             `json:"name"`
	Type domain.UserType    `json:"type"`
}

// SetActiveRequest is the body of PUT /families/{id}/active.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// RegisterFamily handles POST /families.
func (s *Server) RegisterFamily(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body RegisterFamilyRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	members := make([]domain.MemberInput, len(body.Members))
	for i, m := range body.Members {
		members[i] = domain.MemberInput{Name: m.Name, Type: m.Type}
	}

	f, err := s.families.Register(r.Context(), c, body.Name, members)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, familyToResponse(f))
}

// GetFamily handles GET /families/{id}.
func (s *Server) GetFamily(w http.ResponseWriter, r *http.Request) {
	s.familyOp(w, r, s.families.GetByID)
}

// ApproveFamily handles POST /families/{id}/approve.
func (s *Server) ApproveFamily(w http.ResponseWriter, r *http.Request) {
	s.familyOp(w, r, s.families.Approve)
}

// RejectFamily handles POST /families/{id}/reject.
func (s *Server) RejectFamily(w http.ResponseWriter, r *http.Request) {
	s.familyOp(w, r, s.families.Reject)
}

// SetFamilyActive handles PUT /families/{id}/active.
func (s *Server) SetFamilyActive(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body SetActiveRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.IsActive == nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "is_active is required")
		return
	}

	f, err := s.families.SetActive(r.Context(), c, id, *body.IsActive)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, familyToResponse(f))
}

// AddFamilyMember handles POST /families/{id}/members.
func (s *Server) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body MemberRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	u, err := s.families.AddMember(r.Context(), c, id, domain.MemberInput{Name: body.Name, Type: body.Type})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberToResponse(u))
}

// DeleteFamily handles DELETE /families/{id}.
func (s *Server) DeleteFamily(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.families.Delete(r.Context(), c, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) familyOp(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error),
) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	f, err := op(r.Context(), c, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, familyToResponse(f))
}

func memberToResponse(u domain.User) Member {
	return Member{ID: u.ID, Name: u.Name, Type: u.Type}
}
