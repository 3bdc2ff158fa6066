package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "reservo/internal/reservations/errors"
	"reservo/pkg/config"
	mongotx "reservo/pkg/db/mongo"
	"reservo/pkg/events"
	"reservo/pkg/logger"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var errDuplicateKeyForTest = errors.New("duplicate key")

func testConfig() *config.Config {
	return &config.Config{
		MaxOccurrences:   366,
		OverlapScanLimit: 50,
		SlotLockTTL:      10 * time.Second,
		Log:              logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

type mockBookingRepo struct {
	bookings map[string]*model.Booking
	nextID   int

	createFn          func(ctx context.Context, booking *model.Booking) error
	findByIDFn        func(ctx context.Context, id string) (*model.Booking, error)
	findOverlappingFn func(ctx context.Context, resourceID string, start, end time.Time, excludeID string, limit int) ([]*model.Booking, error)
	updateFn          func(ctx context.Context, id string, booking *model.Booking) error
	findByRecordFn    func(ctx context.Context, recordID string) ([]*model.Booking, error)
	countActiveFn     func(ctx context.Context, resourceID string) (int64, error)

	updateCalls int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	m.nextID++
	booking.ID = fmt.Sprintf("%024x", m.nextID)
	booking.CreatedAt = time.Now().UTC()
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	if b, ok := m.bookings[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockBookingRepo) FindAll(ctx context.Context, orgID string, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (m *mockBookingRepo) Count(ctx context.Context, orgID string) (int64, error) {
	return int64(len(m.bookings)), nil
}

func (m *mockBookingRepo) Update(ctx context.Context, id string, booking *model.Booking) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, booking)
	}
	if _, ok := m.bookings[id]; !ok {
		return reserrors.ErrNotFound
	}
	stored := *booking
	stored.ID = id
	m.bookings[id] = &stored
	return nil
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, resourceID string, start, end time.Time, excludeID string, limit int) ([]*model.Booking, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, resourceID, start, end, excludeID, limit)
	}
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ID == excludeID || b.ResourceID != resourceID || b.Status.IsTerminal() {
			continue
		}
		if model.Overlaps(b.StartTime, b.EndTime, start, end) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) FindByResource(ctx context.Context, resourceID string, start, end *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ResourceID == resourceID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountByResource(ctx context.Context, resourceID string, start, end *time.Time) (int64, error) {
	bookings, _ := m.FindByResource(ctx, resourceID, start, end, 0, 0)
	return int64(len(bookings)), nil
}

func (m *mockBookingRepo) FindByRelatedRecord(ctx context.Context, recordID string) ([]*model.Booking, error) {
	if m.findByRecordFn != nil {
		return m.findByRecordFn(ctx, recordID)
	}
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.RelatedRecordID == recordID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountActiveByResource(ctx context.Context, resourceID string) (int64, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, resourceID)
	}
	var count int64
	for _, b := range m.bookings {
		if b.ResourceID == resourceID && !b.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockResourceRepo struct {
	resources map[string]*model.Resource

	statusUpdates []model.ResourceStatus
	deleted       []string
}

func newMockResourceRepo(resources ...*model.Resource) *mockResourceRepo {
	m := &mockResourceRepo{resources: make(map[string]*model.Resource)}
	for _, r := range resources {
		m.resources[r.ID] = r
	}
	return m
}

func (m *mockResourceRepo) Create(ctx context.Context, resource *model.Resource) error {
	if resource.ID == "" {
		resource.ID = fmt.Sprintf("%024x", len(m.resources)+1)
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *mockResourceRepo) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, reserrors.ErrResourceNotFound
}

func (m *mockResourceRepo) FindAll(ctx context.Context, orgID string, filter model.ResourceFilter, limit int, offset int64) ([]*model.Resource, error) {
	var out []*model.Resource
	for _, r := range m.resources {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (m *mockResourceRepo) Count(ctx context.Context, orgID string, filter model.ResourceFilter) (int64, error) {
	return int64(len(m.resources)), nil
}

func (m *mockResourceRepo) UpdateStatus(ctx context.Context, id string, status model.ResourceStatus) error {
	m.statusUpdates = append(m.statusUpdates, status)
	if r, ok := m.resources[id]; ok {
		r.Status = status
		return nil
	}
	return reserrors.ErrResourceNotFound
}

func (m *mockResourceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.resources[id]; !ok {
		return reserrors.ErrResourceNotFound
	}
	delete(m.resources, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSlotLockRepo struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMockSlotLockRepo() *mockSlotLockRepo {
	return &mockSlotLockRepo{held: make(map[string]bool)}
}

func (m *mockSlotLockRepo) Create(ctx context.Context, lock *model.SlotLock) error {
	if m.held[lock.ID] {
		return errDuplicateKeyForTest
	}
	m.held[lock.ID] = true
	m.acquired = append(m.acquired, lock.ID)
	return nil
}

func (m *mockSlotLockRepo) Delete(ctx context.Context, id string) error {
	delete(m.held, id)
	m.released = append(m.released, id)
	return nil
}

func (m *mockSlotLockRepo) IsDuplicateKeyError(err error) bool {
	return errors.Is(err, errDuplicateKeyForTest)
}

type mockConflictRepo struct {
	conflicts map[string]*model.BookingConflict
}

func newMockConflictRepo() *mockConflictRepo {
	return &mockConflictRepo{conflicts: make(map[string]*model.BookingConflict)}
}

func (m *mockConflictRepo) Create(ctx context.Context, conflict *model.BookingConflict) error {
	conflict.CreatedAt = time.Now().UTC()
	stored := *conflict
	m.conflicts[conflict.ID] = &stored
	return nil
}

func (m *mockConflictRepo) FindByID(ctx context.Context, id string) (*model.BookingConflict, error) {
	if c, ok := m.conflicts[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, reserrors.ErrConflictNotFound
}

func (m *mockConflictRepo) FindAll(ctx context.Context, orgID string, resolved *bool, limit int, offset int64) ([]*model.BookingConflict, error) {
	var out []*model.BookingConflict
	for _, c := range m.conflicts {
		if resolved != nil && c.Resolved != *resolved {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (m *mockConflictRepo) Count(ctx context.Context, orgID string, resolved *bool) (int64, error) {
	conflicts, _ := m.FindAll(ctx, orgID, resolved, 0, 0)
	return int64(len(conflicts)), nil
}

func (m *mockConflictRepo) Resolve(ctx context.Context, id, resolvedBy, action, notes string) error {
	c, ok := m.conflicts[id]
	if !ok {
		return reserrors.ErrConflictNotFound
	}
	now := time.Now().UTC()
	c.Resolved = true
	c.ResolvedBy = resolvedBy
	c.ResolvedAt = &now
	c.ResolutionAction = action
	c.Notes = notes
	return nil
}

type mockPublisher struct {
	eventTypes []string
}

func (m *mockPublisher) Publish(ctx context.Context, msg events.Message) error {
	m.eventTypes = append(m.eventTypes, msg.Headers[events.HeaderEventType])
	return nil
}
