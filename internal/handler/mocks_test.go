package handler_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/handler"
)

// The mocks below are hand-written test doubles for the handler's servicer
// interfaces. Each method is a function field; set only the ones the test
// needs. Calling an unset one panics, which fails the test loudly.

type mockTripServicer struct {
	create       func(ctx context.Context, c domain.Caller, in domain.TripInput) (domain.Trip, error)
	getByID      func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	listPaged    func(ctx context.Context, c domain.Caller, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update       func(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	publish      func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	unpublish    func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	assignAdmins func(ctx context.Context, c domain.Caller, id uuid.UUID, userIDs []uuid.UUID) (domain.Trip, error)
	addAdmin     func(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error)
	removeAdmin  func(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error)
	delete       func(ctx context.Context, c domain.Caller, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, c domain.Caller, in domain.TripInput) (domain.Trip, error) {
	return m.create(ctx, c, in)
}
func (m *mockTripServicer) GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, c, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, c domain.Caller, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, c, p)
}
func (m *mockTripServicer) Update(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, c, id, patch)
}
func (m *mockTripServicer) Publish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	return m.publish(ctx, c, id)
}
func (m *mockTripServicer) Unpublish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error) {
	return m.unpublish(ctx, c, id)
}
func (m *mockTripServicer) AssignAdmins(ctx context.Context, c domain.Caller, id uuid.UUID, userIDs []uuid.UUID) (domain.Trip, error) {
	return m.assignAdmins(ctx, c, id, userIDs)
}
func (m *mockTripServicer) AddAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error) {
	return m.addAdmin(ctx, c, id, userID)
}
func (m *mockTripServicer) RemoveAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error) {
	return m.removeAdmin(ctx, c, id, userID)
}
func (m *mockTripServicer) Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	return m.delete(ctx, c, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockAttendanceServicer struct {
	mark func(ctx context.Context, c domain.Caller, tripID, familyID uuid.UUID, attending bool) (domain.Trip, error)
	list func(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.Family, error)
}

func (m *mockAttendanceServicer) MarkAttendance(ctx context.Context, c domain.Caller, tripID, familyID uuid.UUID, attending bool) (domain.Trip, error) {
	return m.mark(ctx, c, tripID, familyID, attending)
}
func (m *mockAttendanceServicer) ListAttendees(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.Family, error) {
	return m.list(ctx, c, tripID)
}

var _ handler.AttendanceServicer = (*mockAttendanceServicer)(nil)

type mockGearServicer struct {
	createItem       func(ctx context.Context, c domain.Caller, tripID uuid.UUID, name string, qty int) (domain.GearItem, error)
	getItem          func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.GearItem, error)
	updateItem       func(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.GearItemPatch) (domain.GearItem, error)
	deleteItem       func(ctx context.Context, c domain.Caller, id uuid.UUID) error
	assign           func(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID, qty int) (domain.GearItem, error)
	removeAssignment func(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID) (domain.GearItem, error)
	summary          func(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.GearSummary, error)
}

func (m *mockGearServicer) CreateItem(ctx context.Context, c domain.Caller, tripID uuid.UUID, name string, qty int) (domain.GearItem, error) {
	return m.createItem(ctx, c, tripID, name, qty)
}
func (m *mockGearServicer) GetItem(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.GearItem, error) {
	return m.getItem(ctx, c, id)
}
func (m *mockGearServicer) UpdateItem(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.GearItemPatch) (domain.GearItem, error) {
	return m.updateItem(ctx, c, id, patch)
}
func (m *mockGearServicer) DeleteItem(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	return m.deleteItem(ctx, c, id)
}
func (m *mockGearServicer) Assign(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID, qty int) (domain.GearItem, error) {
	return m.assign(ctx, c, itemID, familyID, qty)
}
func (m *mockGearServicer) RemoveAssignment(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID) (domain.GearItem, error) {
	return m.removeAssignment(ctx, c, itemID, familyID)
}
func (m *mockGearServicer) Summary(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.GearSummary, error) {
	return m.summary(ctx, c, tripID)
}

var _ handler.GearServicer = (*mockGearServicer)(nil)

type mockFamilyServicer struct {
	register  func(ctx context.Context, c domain.Caller, name string, members []domain.MemberInput) (domain.Family, error)
	addMember func(ctx context.Context, c domain.Caller, familyID uuid.UUID, m domain.MemberInput) (domain.User, error)
	getByID   func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	approve   func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	reject    func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	setActive func(ctx context.Context, c domain.Caller, id uuid.UUID, active bool) (domain.Family, error)
	delete    func(ctx context.Context, c domain.Caller, id uuid.UUID) error
}

func (m *mockFamilyServicer) Register(ctx context.Context, c domain.Caller, name string, members []domain.MemberInput) (domain.Family, error) {
	return m.register(ctx, c, name, members)
}
func (m *mockFamilyServicer) AddMember(ctx context.Context, c domain.Caller, familyID uuid.UUID, in domain.MemberInput) (domain.User, error) {
	return m.addMember(ctx, c, familyID, in)
}
func (m *mockFamilyServicer) GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	return m.getByID(ctx, c, id)
}
func (m *mockFamilyServicer) Approve(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	return m.approve(ctx, c, id)
}
func (m *mockFamilyServicer) Reject(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error) {
	return m.reject(ctx, c, id)
}
func (m *mockFamilyServicer) SetActive(ctx context.Context, c domain.Caller, id uuid.UUID, active bool) (domain.Family, error) {
	return m.setActive(ctx, c, id, active)
}
func (m *mockFamilyServicer) Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	return m.delete(ctx, c, id)
}

var _ handler.FamilyServicer = (*mockFamilyServicer)(nil)
