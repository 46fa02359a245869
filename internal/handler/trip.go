package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
)

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Name                 string              `json:"name"`
	Location             string              `json:"location"`
	Description          string              `json:"description,omitempty"`
	PhotoAlbumLink       string              `json:"photo_album_link,omitempty"`
	StartDate            openapi_types.Date  `json:"start_date"`
	EndDate              openapi_types.Date  `json:"end_date"`
	AttendanceCutoffDate *openapi_types.Date `json:"attendance_cutoff_date,omitempty"`
}

// UpdateTripRequest is the body of PATCH /trips/{id}. Omitted fields are
// left unchanged; ClearAttendanceCutoff removes an existing cutoff.
type UpdateTripRequest struct {
	Name                  *string             `json:"name,omitempty"`
	Location              *string             `json:"location,omitempty"`
	Description           *string             `json:"description,omitempty"`
	PhotoAlbumLink        *string             `json:"photo_album_link,omitempty"`
	StartDate             *openapi_types.Date `json:"start_date,omitempty"`
	EndDate               *openapi_types.Date `json:"end_date,omitempty"`
	AttendanceCutoffDate  *openapi_types.Date `json:"attendance_cutoff_date,omitempty"`
	ClearAttendanceCutoff bool                `json:"clear_attendance_cutoff,omitempty"`
}

// Trip is the wire representation of a trip, including its time-derived state.
type Trip struct {
	ID                   openapi_types.UUID   `json:"id"`
	Name                 string               `json:"name"`
	Location             string               `json:"location"`
	Description          string               `json:"description"`
	PhotoAlbumLink       string               `json:"photo_album_link"`
	StartDate            openapi_types.Date   `json:"start_date"`
	EndDate              openapi_types.Date   `json:"end_date"`
	AttendanceCutoffDate *openapi_types.Date  `json:"attendance_cutoff_date,omitempty"`
	Draft                bool                 `json:"draft"`
	Phase                domain.TripPhase     `json:"phase"`
	AttendanceOpen       bool                 `json:"attendance_open"`
	GearOpen             bool                 `json:"gear_open"`
	Admins               []openapi_types.UUID `json:"admins"`
	Attendees            []openapi_types.UUID `json:"attendees"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body CreateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), c, requestToTripInput(body))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), c, params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = s.tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), c, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.trips.Update(r.Context(), c, id, requestToTripPatch(body))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), c, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishTrip handles POST /trips/{id}/publish.
func (s *Server) PublishTrip(w http.ResponseWriter, r *http.Request) {
	s.tripTransition(w, r, s.trips.Publish)
}

// UnpublishTrip handles POST /trips/{id}/unpublish.
func (s *Server) UnpublishTrip(w http.ResponseWriter, r *http.Request) {
	s.tripTransition(w, r, s.trips.Unpublish)
}

// --- mapping helpers --------------------------------------------------------

// queryInt parses an optional integer query parameter. It writes a 400 and
// returns false when the value is present but not an integer.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s %q: must be an integer", name, raw))
		return nil, false
	}
	return &n, true
}

func requestToTripInput(body CreateTripRequest) domain.TripInput {
	in := domain.TripInput{
		Name:           body.Name,
		Location:       body.Location,
		Description:    body.Description,
		PhotoAlbumLink: body.PhotoAlbumLink,
		StartDate:      body.StartDate.Time,
		EndDate:        body.EndDate.Time,
	}
	if body.AttendanceCutoffDate != nil {
		cutoff := body.AttendanceCutoffDate.Time
		in.AttendanceCutoff = &cutoff
	}
	return in
}

func requestToTripPatch(body UpdateTripRequest) domain.TripPatch {
	p := domain.TripPatch{
		Name:                  body.Name,
		Location:              body.Location,
		Description:           body.Description,
		PhotoAlbumLink:        body.PhotoAlbumLink,
		ClearAttendanceCutoff: body.ClearAttendanceCutoff,
	}
	if body.StartDate != nil {
		p.StartDate = &body.StartDate.Time
	}
	if body.EndDate != nil {
		p.EndDate = &body.EndDate.Time
	}
	if body.AttendanceCutoffDate != nil {
		p.AttendanceCutoff = &body.AttendanceCutoffDate.Time
	}
	return p
}

// tripToResponse converts a domain.Trip into its wire form. Phase and the
// open flags are derived from the server clock at response time.
func (s *Server) tripToResponse(t domain.Trip) Trip {
	timing := t.Timing(s.now())
	resp := Trip{
		ID:             t.ID,
		Name:           t.Name,
		Location:       t.Location,
		Description:    t.Description,
		PhotoAlbumLink: t.PhotoAlbumLink,
		StartDate:      openapi_types.Date{Time: t.StartDate.UTC()},
		EndDate:        openapi_types.Date{Time: t.EndDate.UTC()},
		Draft:          t.Draft,
		Phase:          timing.Phase,
		AttendanceOpen: !t.Draft && !timing.CutoffPassed,
		GearOpen:       !t.Draft && !timing.Started,
		Admins:         idsOrEmpty(t.Admins),
		Attendees:      idsOrEmpty(t.Attendees),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.AttendanceCutoff != nil {
		resp.AttendanceCutoffDate = &openapi_types.Date{Time: t.AttendanceCutoff.UTC()}
	}
	return resp
}

func idsOrEmpty(ids []openapi_types.UUID) []openapi_types.UUID {
	if ids == nil {
		return []openapi_types.UUID{}
	}
	return ids
}
