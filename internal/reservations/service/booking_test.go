package service

import (
	"context"
	"testing"
	"time"

	"reservo/internal/reservations/validator"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/events"
	"reservo/pkg/model"
)

const (
	testRoomID  = "507f1f77bcf86cd799439011"
	testAssetID = "507f1f77bcf86cd799439012"
)

func testRoom(rule model.BookingRule) *model.Resource {
	return &model.Resource{
		ID:         testRoomID,
		OrgID:      "org-1",
		Name:       "Boardroom A",
		Kind:       model.ResourceRoom,
		HourlyRate: 20,
		Status:     model.ResourceAvailable,
		IsActive:   true,
		Rule:       rule,
	}
}

func testAsset(rule model.BookingRule) *model.Resource {
	return &model.Resource{
		ID:       testAssetID,
		OrgID:    "org-1",
		Name:     "Projector cart",
		Kind:     model.ResourceAsset,
		Status:   model.ResourceAvailable,
		IsActive: true,
		Rule:     rule,
	}
}

type serviceFixture struct {
	svc       ReservationService
	repo      *mockBookingRepo
	resources *mockResourceRepo
	locks     *mockSlotLockRepo
	publisher *mockPublisher
}

func newFixture(t *testing.T, resources ...*model.Resource) *serviceFixture {
	t.Helper()
	cfg := testConfig()
	repo := newMockBookingRepo()
	resourceRepo := newMockResourceRepo(resources...)
	locks := newMockSlotLockRepo()
	publisher := &mockPublisher{}
	v := validator.NewBookingValidator(cfg.Log)

	return &serviceFixture{
		svc:       NewReservationService(repo, resourceRepo, locks, v, publisher, cfg),
		repo:      repo,
		resources: resourceRepo,
		locks:     locks,
		publisher: publisher,
	}
}

func newBookingRequest(resourceID string, start time.Time, duration time.Duration) *model.Booking {
	return &model.Booking{
		OrgID:      "org-1",
		ResourceID: resourceID,
		BookedBy:   "emp-204",
		Title:      "Sprint planning",
		StartTime:  start,
		EndTime:    start.Add(duration),
	}
}

func TestCreateSingleBooking(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, 90*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Bookings) != 1 || len(result.Skipped) != 0 {
		t.Fatalf("expected 1 booking and 0 skipped, got %d/%d", len(result.Bookings), len(result.Skipped))
	}

	b := result.Bookings[0]
	if b.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
	if b.EstimatedCost != 30 {
		t.Errorf("estimated cost = %v, want 30 (20/h for 90m)", b.EstimatedCost)
	}
	if b.BookingType != model.BookingRoom {
		t.Errorf("booking type = %s, want room", b.BookingType)
	}

	if len(f.locks.acquired) != 1 || len(f.locks.released) != 1 {
		t.Errorf("slot lock acquired %d times, released %d times; want 1/1",
			len(f.locks.acquired), len(f.locks.released))
	}
	if len(f.publisher.eventTypes) != 1 || f.publisher.eventTypes[0] != events.EventBookingCreated {
		t.Errorf("published events = %v, want [booking.created]", f.publisher.eventTypes)
	}
}

func TestCreateRequiresApprovalStartsTentative(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{RequiresApproval: true}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Bookings[0].Status != model.StatusTentative {
		t.Errorf("status = %s, want tentative", result.Bookings[0].Status)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	first, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err = f.svc.Create(context.Background(), newBookingRequest(testRoomID, start.Add(30*time.Minute), time.Hour))
	if !apperrors.IsCode(err, apperrors.CodeAvailabilityConflict) {
		t.Fatalf("expected AVAILABILITY_CONFLICT, got %v", err)
	}

	appErr := apperrors.AsAppError(err)
	ids, ok := appErr.Details["colliding_booking_ids"].([]string)
	if !ok || len(ids) != 1 || ids[0] != first.Bookings[0].ID {
		t.Errorf("details should name the colliding booking %s, got %v",
			first.Bookings[0].ID, appErr.Details)
	}
}

func TestCreateAllowsBackToBack(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	if _, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour)); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Starts exactly when the first one ends.
	if _, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start.Add(time.Hour), time.Hour)); err != nil {
		t.Fatalf("back-to-back booking should not conflict: %v", err)
	}
}

func TestCreateCancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	first, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), first.Bookings[0].ID, "emp-204", "no longer needed"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour)); err != nil {
		t.Fatalf("slot should be free after cancellation: %v", err)
	}
}

func TestCreateEnforcesPolicy(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{MinDurationMin: 60}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, 30*time.Minute))
	if !apperrors.IsCode(err, apperrors.CodePolicyViolation) {
		t.Fatalf("expected POLICY_VIOLATION, got %v", err)
	}
}

func TestCreateRejectsRetiredResource(t *testing.T) {
	room := testRoom(model.BookingRule{})
	room.Status = model.ResourceRetired
	f := newFixture(t, room)
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if !apperrors.IsCode(err, apperrors.CodePolicyViolation) {
		t.Fatalf("expected POLICY_VIOLATION for retired resource, got %v", err)
	}
}

func TestCreateUnknownResource(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateHeldLockConflicts(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	f.locks.held["slot_lock_"+testRoomID] = true
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT while lock is held, got %v", err)
	}
}

func TestCreateRecurringSkipsCollidingOccurrences(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	// Occupy the second day up front.
	blocker, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start.AddDate(0, 0, 1), time.Hour))
	if err != nil {
		t.Fatalf("blocker booking failed: %v", err)
	}

	recurring := newBookingRequest(testRoomID, start, time.Hour)
	occurrences := 3
	recurring.Recurrence = &model.RecurrencePattern{
		Frequency:   model.FrequencyDaily,
		Interval:    1,
		Occurrences: &occurrences,
	}

	result, err := f.svc.Create(context.Background(), recurring)
	if err != nil {
		t.Fatalf("recurring create failed: %v", err)
	}

	if len(result.Bookings) != 2 {
		t.Errorf("expected 2 created occurrences, got %d", len(result.Bookings))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped occurrence, got %d", len(result.Skipped))
	}
	skipped := result.Skipped[0]
	if len(skipped.CollidingBookingIDs) != 1 || skipped.CollidingBookingIDs[0] != blocker.Bookings[0].ID {
		t.Errorf("skipped occurrence should name blocker %s, got %v",
			blocker.Bookings[0].ID, skipped.CollidingBookingIDs)
	}

	seriesID := result.Bookings[0].SeriesID
	if seriesID == "" {
		t.Error("recurring bookings should carry a series id")
	}
	for _, b := range result.Bookings {
		if b.SeriesID != seriesID {
			t.Errorf("series ids differ: %s vs %s", b.SeriesID, seriesID)
		}
	}
}

func TestCreateRecurringPolicyFailureAbortsAll(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{MaxAdvanceDays: 1}))
	start := time.Now().UTC().Add(12 * time.Hour).Truncate(time.Minute)

	recurring := newBookingRequest(testRoomID, start, time.Hour)
	occurrences := 5
	recurring.Recurrence = &model.RecurrencePattern{
		Frequency:   model.FrequencyDaily,
		Interval:    1,
		Occurrences: &occurrences,
	}

	// The later occurrences fall outside the one-day horizon; nothing may be
	// created.
	_, err := f.svc.Create(context.Background(), recurring)
	if !apperrors.IsCode(err, apperrors.CodePolicyViolation) {
		t.Fatalf("expected POLICY_VIOLATION, got %v", err)
	}
	if len(f.repo.bookings) != 0 {
		t.Errorf("expected no bookings persisted, got %d", len(f.repo.bookings))
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	created, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := created.Bookings[0].ID

	if _, err := f.svc.Cancel(context.Background(), id, "emp-204", "plans changed"); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	updatesAfterFirst := f.repo.updateCalls

	b, err := f.svc.Cancel(context.Background(), id, "emp-204", "plans changed")
	if err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
	if b.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", b.Status)
	}
	if f.repo.updateCalls != updatesAfterFirst {
		t.Error("second cancel should not write")
	}
}

func TestCancelReturnedBookingFails(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{}))
	now := time.Now().UTC()
	f.repo.bookings["aaaaaaaaaaaaaaaaaaaaaaaa"] = &model.Booking{
		ID:         "aaaaaaaaaaaaaaaaaaaaaaaa",
		ResourceID: testAssetID,
		Status:     model.StatusReturned,
		StartTime:  now.Add(-2 * time.Hour),
		EndTime:    now.Add(-1 * time.Hour),
	}

	_, err := f.svc.Cancel(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaa", "emp-1", "")
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestCancelRecordsAuditFields(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	created, _ := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	b, err := f.svc.Cancel(context.Background(), created.Bookings[0].ID, "mgr-7", "room needed for all-hands")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if b.CancelledAt == nil || b.CancelledBy != "mgr-7" || b.CancellationReason != "room needed for all-hands" {
		t.Errorf("audit fields not recorded: %+v", b)
	}
}

func TestApproveTentativeBooking(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{RequiresApproval: true}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := result.Bookings[0].ID

	b, err := f.svc.Approve(context.Background(), id, "mgr-17")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}

	want := []string{events.EventBookingCreated, events.EventBookingConfirmed}
	if len(f.publisher.eventTypes) != 2 ||
		f.publisher.eventTypes[0] != want[0] || f.publisher.eventTypes[1] != want[1] {
		t.Errorf("published events = %v, want %v", f.publisher.eventTypes, want)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{RequiresApproval: true}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := result.Bookings[0].ID

	if _, err := f.svc.Approve(context.Background(), id, "mgr-17"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	updates := f.repo.updateCalls

	b, err := f.svc.Approve(context.Background(), id, "mgr-17")
	if err != nil {
		t.Fatalf("second approve errored: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
	if f.repo.updateCalls != updates {
		t.Error("second approve must not write")
	}
}

func TestApproveCancelledBookingFails(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	id := "eeeeeeeeeeeeeeeeeeeeeeee"
	f.repo.bookings[id] = &model.Booking{
		ID:         id,
		ResourceID: testRoomID,
		Status:     model.StatusCancelled,
	}

	_, err := f.svc.Approve(context.Background(), id, "mgr-17")
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestApproveRequiresActor(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))

	_, err := f.svc.Approve(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeee", "")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdateRescheduleChecksAvailability(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	first, _ := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	second, _ := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start.Add(2*time.Hour), time.Hour))

	// Move the second booking onto the first one.
	newStart := start.Add(30 * time.Minute)
	newEnd := newStart.Add(time.Hour)
	_, err := f.svc.Update(context.Background(), second.Bookings[0].ID, &model.BookingUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if !apperrors.IsCode(err, apperrors.CodeAvailabilityConflict) {
		t.Fatalf("expected AVAILABILITY_CONFLICT, got %v", err)
	}
	_ = first
}

func TestUpdateRescheduleExcludesSelf(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	created, _ := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	id := created.Bookings[0].ID

	// Extending within the original window overlaps only itself.
	newStart := start.Add(15 * time.Minute)
	newEnd := newStart.Add(time.Hour)
	updated, err := f.svc.Update(context.Background(), id, &model.BookingUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if err != nil {
		t.Fatalf("reschedule should not collide with itself: %v", err)
	}
	if !updated.StartTime.Equal(newStart) {
		t.Errorf("start = %v, want %v", updated.StartTime, newStart)
	}
	if updated.EstimatedCost != 20 {
		t.Errorf("estimated cost not recomputed: got %v, want 20", updated.EstimatedCost)
	}
}

func TestUpdateTerminalBookingFails(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	created, _ := f.svc.Create(context.Background(), newBookingRequest(testRoomID, start, time.Hour))
	id := created.Bookings[0].ID
	if _, err := f.svc.Cancel(context.Background(), id, "emp-204", ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	title := "New title"
	_, err := f.svc.Update(context.Background(), id, &model.BookingUpdate{Title: title})
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestGetByIDDerivesOverdue(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{}))
	now := time.Now().UTC()
	f.repo.bookings["bbbbbbbbbbbbbbbbbbbbbbbb"] = &model.Booking{
		ID:          "bbbbbbbbbbbbbbbbbbbbbbbb",
		ResourceID:  testAssetID,
		BookingType: model.BookingAsset,
		Status:      model.StatusCheckedOut,
		StartTime:   now.Add(-3 * time.Hour),
		EndTime:     now.Add(-1 * time.Hour),
	}

	b, err := f.svc.GetByID(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != model.StatusOverdue {
		t.Errorf("status = %s, want overdue", b.Status)
	}

	// The stored document keeps its persisted status.
	if f.repo.bookings["bbbbbbbbbbbbbbbbbbbbbbbb"].Status != model.StatusCheckedOut {
		t.Error("overdue must not be written back")
	}
}
