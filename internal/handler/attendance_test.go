package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/handler"
)

func TestMarkAttendance_passesFlag(t *testing.T) {
	trip := tripFixture()
	familyID := uuid.New()
	for _, attending := range []bool{true, false} {
		svc := &mockAttendanceServicer{mark: func(_ context.Context, _ domain.Caller, tripID, gotFamily uuid.UUID, got bool) (domain.Trip, error) {
			assert.Equal(t, trip.ID, tripID)
			assert.Equal(t, familyID, gotFamily)
			assert.Equal(t, attending, got)
			out := trip
			if got {
				out.Attendees = []uuid.UUID{familyID}
			}
			return out, nil
		}}
		h := newHTTPHandler(services{attendance: svc})

		rec := do(t, h, http.MethodPut, "/trips/"+trip.ID.String()+"/attendance/"+familyID.String(),
			map[string]any{"attending": attending})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, attending, len(decode[handler.Trip](t, rec).Attendees) == 1)
	}
}

func TestMarkAttendance_missingFlag_returns422(t *testing.T) {
	h := newHTTPHandler(services{})

	rec := do(t, h, http.MethodPut, "/trips/"+uuid.NewString()+"/attendance/"+uuid.NewString(), map[string]any{})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "attending is required", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestMarkAttendance_cutoffPassed_returns409(t *testing.T) {
	svc := &mockAttendanceServicer{mark: func(context.Context, domain.Caller, uuid.UUID, uuid.UUID, bool) (domain.Trip, error) {
		return domain.Trip{}, fmt.Errorf("service.AttendanceService.MarkAttendance: %w: attendance closed on 2025-07-01", domain.ErrPrecondition)
	}}
	h := newHTTPHandler(services{attendance: svc})

	rec := do(t, h, http.MethodPut, "/trips/"+uuid.NewString()+"/attendance/"+uuid.NewString(), map[string]any{"attending": false})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "precondition_failed", body.Error.Code)
	assert.Equal(t, "attendance closed on 2025-07-01", body.Error.Message)
}

func TestListAttendees_returnsFamilies(t *testing.T) {
	families := []domain.Family{
		{ID: uuid.New(), Name: "Garcia", Status: domain.FamilyApproved, IsActive: true},
		{ID: uuid.New(), Name: "Smith", Status: domain.FamilyApproved, IsActive: true},
	}
	svc := &mockAttendanceServicer{list: func(context.Context, domain.Caller, uuid.UUID) ([]domain.Family, error) {
		return families, nil
	}}
	h := newHTTPHandler(services{attendance: svc})

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString()+"/attendees", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[[]handler.Family](t, rec)
	require.Len(t, body, 2)
	assert.Equal(t, "Garcia", body[0].Name)
	assert.Equal(t, domain.FamilyApproved, body[1].Status)
}
