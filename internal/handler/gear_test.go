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

func gearFixture(tripID uuid.UUID, needed int, pledges ...int) domain.GearItem {
	item := domain.GearItem{
		ID:             uuid.New(),
		TripID:         tripID,
		Name:           "Tent",
		QuantityNeeded: needed,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	for i, qty := range pledges {
		item.Assignments = append(item.Assignments, domain.GearAssignment{
			FamilyID:   uuid.New(),
			FamilyName: fmt.Sprintf("Family %d", i+1),
			Quantity:   qty,
			UpdatedAt:  testNow,
		})
	}
	return item
}

func TestCreateGearItem_returns201(t *testing.T) {
	tripID := uuid.New()
	svc := &mockGearServicer{createItem: func(_ context.Context, _ domain.Caller, gotTrip uuid.UUID, name string, qty int) (domain.GearItem, error) {
		assert.Equal(t, tripID, gotTrip)
		assert.Equal(t, "Tent", name)
		assert.Equal(t, 3, qty)
		return gearFixture(tripID, qty), nil
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodPost, "/trips/"+tripID.String()+"/gear", map[string]any{"name": "Tent", "quantity_needed": 3})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[handler.GearItem](t, rec)
	assert.Equal(t, 3, body.Remaining)
	assert.Equal(t, domain.GearUnassigned, body.Status)
	assert.NotNil(t, body.Assignments)
}

func TestGearSummary_reportsTotals(t *testing.T) {
	tripID := uuid.New()
	full := gearFixture(tripID, 2, 2)
	partial := gearFixture(tripID, 5, 1, 2)
	svc := &mockGearServicer{summary: func(context.Context, domain.Caller, uuid.UUID) ([]domain.GearSummary, error) {
		return []domain.GearSummary{domain.Summarize(full), domain.Summarize(partial)}, nil
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodGet, "/trips/"+tripID.String()+"/gear", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[[]handler.GearItem](t, rec)
	require.Len(t, body, 2)
	assert.Equal(t, domain.GearComplete, body[0].Status)
	assert.Equal(t, 0, body[0].Remaining)
	assert.Equal(t, domain.GearPartial, body[1].Status)
	assert.Equal(t, 3, body[1].TotalAssigned)
	assert.Equal(t, 2, body[1].Remaining)
	assert.Len(t, body[1].Assignments, 2)
}

func TestGearSummary_emptyTrip_returnsEmptyArray(t *testing.T) {
	svc := &mockGearServicer{summary: func(context.Context, domain.Caller, uuid.UUID) ([]domain.GearSummary, error) {
		return nil, nil
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString()+"/gear", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateGearItem_belowAssigned_returns409(t *testing.T) {
	svc := &mockGearServicer{updateItem: func(_ context.Context, _ domain.Caller, _ uuid.UUID, p domain.GearItemPatch) (domain.GearItem, error) {
		require.NotNil(t, p.QuantityNeeded)
		assert.Nil(t, p.Name)
		return domain.GearItem{}, fmt.Errorf("service.GearService.UpdateItem: %w: quantity needed 2 is below the 4 already assigned; minimum is 4", domain.ErrCapacity)
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodPatch, "/gear/"+uuid.NewString(), map[string]any{"quantity_needed": 2})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "capacity_exceeded", body.Error.Code)
	assert.Contains(t, body.Error.Message, "minimum is 4")
}

func TestAssignGear_passesQuantity(t *testing.T) {
	itemID, familyID := uuid.New(), uuid.New()
	svc := &mockGearServicer{assign: func(_ context.Context, _ domain.Caller, gotItem, gotFamily uuid.UUID, qty int) (domain.GearItem, error) {
		assert.Equal(t, itemID, gotItem)
		assert.Equal(t, familyID, gotFamily)
		assert.Equal(t, 2, qty)
		return gearFixture(uuid.New(), 5, 2), nil
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodPut, "/gear/"+itemID.String()+"/assignments/"+familyID.String(), map[string]any{"quantity": 2})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[handler.GearItem](t, rec).Remaining)
}

func TestAssignGear_overCapacity_returns409(t *testing.T) {
	svc := &mockGearServicer{assign: func(context.Context, domain.Caller, uuid.UUID, uuid.UUID, int) (domain.GearItem, error) {
		return domain.GearItem{}, fmt.Errorf("service.GearService.Assign: %w: cannot assign more than needed: requested 3, 2 of 5 still available", domain.ErrCapacity)
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodPut, "/gear/"+uuid.NewString()+"/assignments/"+uuid.NewString(), map[string]any{"quantity": 3})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot assign more than needed: requested 3, 2 of 5 still available",
		decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestAssignGear_invalidFamilyID_returns400(t *testing.T) {
	h := newHTTPHandler(services{})

	rec := do(t, h, http.MethodPut, "/gear/"+uuid.NewString()+"/assignments/smiths", map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveGearAssignment_missing_returns404(t *testing.T) {
	svc := &mockGearServicer{removeAssignment: func(context.Context, domain.Caller, uuid.UUID, uuid.UUID) (domain.GearItem, error) {
		return domain.GearItem{}, fmt.Errorf("service.GearService.RemoveAssignment: family x has no assignment on gear item y: %w", domain.ErrNotFound)
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodDelete, "/gear/"+uuid.NewString()+"/assignments/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "family x has no assignment on gear item y: not found", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestDeleteGearItem_returns204(t *testing.T) {
	id := uuid.New()
	svc := &mockGearServicer{deleteItem: func(_ context.Context, _ domain.Caller, got uuid.UUID) error {
		assert.Equal(t, id, got)
		return nil
	}}
	h := newHTTPHandler(services{gear: svc})

	rec := do(t, h, http.MethodDelete, "/gear/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
