package service

import (
	"context"
	"testing"
	"time"

	apperrors "reservo/pkg/errors"
	"reservo/pkg/events"
	"reservo/pkg/model"
)

func seedAssetBooking(f *serviceFixture, status model.BookingStatus) string {
	id := "cccccccccccccccccccccccc"
	now := time.Now().UTC()
	f.repo.bookings[id] = &model.Booking{
		ID:          id,
		OrgID:       "org-1",
		ResourceID:  testAssetID,
		BookingType: model.BookingAsset,
		BookedBy:    "emp-204",
		Title:       "Projector for offsite",
		Status:      status,
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(4 * time.Hour),
	}
	return id
}

func TestCheckoutConfirmedAsset(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusConfirmed)

	b, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{
		CheckedOutBy: "emp-204",
		Condition:    "good, minor scratch on lens cap",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if b.Status != model.StatusCheckedOut {
		t.Errorf("status = %s, want checked_out", b.Status)
	}
	if b.CheckedOutAt == nil || b.CheckedOutBy != "emp-204" {
		t.Errorf("checkout stamps missing: %+v", b)
	}
	if b.ConditionOnCheckout == "" {
		t.Error("condition on checkout not recorded")
	}

	if len(f.resources.statusUpdates) != 1 || f.resources.statusUpdates[0] != model.ResourceInUse {
		t.Errorf("resource status updates = %v, want [in_use]", f.resources.statusUpdates)
	}
	if len(f.publisher.eventTypes) != 1 || f.publisher.eventTypes[0] != events.EventAssetCheckedOut {
		t.Errorf("published events = %v, want [asset.checked_out]", f.publisher.eventTypes)
	}
}

func TestCheckoutTentativeAssetFails(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusTentative)

	_, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{CheckedOutBy: "emp-204"})
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestCheckoutTwiceFails(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusConfirmed)

	if _, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{CheckedOutBy: "emp-204"}); err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	_, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{CheckedOutBy: "emp-204"})
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION on double checkout, got %v", err)
	}
}

func TestCheckoutNotTrackedAssetFails(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{}))
	id := seedAssetBooking(f, model.StatusConfirmed)

	_, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{CheckedOutBy: "emp-204"})
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for untracked asset, got %v", err)
	}
}

func TestCheckoutRoomFails(t *testing.T) {
	f := newFixture(t, testRoom(model.BookingRule{}))
	id := "dddddddddddddddddddddddd"
	f.repo.bookings[id] = &model.Booking{
		ID:          id,
		ResourceID:  testRoomID,
		BookingType: model.BookingRoom,
		Status:      model.StatusConfirmed,
	}

	_, err := f.svc.Checkout(context.Background(), id, &CheckoutRequest{CheckedOutBy: "emp-204"})
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for room checkout, got %v", err)
	}
}

func TestReturnCheckedOutAsset(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusCheckedOut)

	b, err := f.svc.Return(context.Background(), id, &ReturnRequest{
		ReturnedBy:        "emp-204",
		Condition:         "screen cracked",
		DamageReported:    true,
		DamageDescription: "dropped during transport",
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if b.Status != model.StatusReturned {
		t.Errorf("status = %s, want returned", b.Status)
	}
	if b.ReturnedAt == nil || b.ReturnedBy != "emp-204" {
		t.Errorf("return stamps missing: %+v", b)
	}
	if !b.DamageReported || b.DamageDescription == "" {
		t.Errorf("damage report not recorded: %+v", b)
	}

	if len(f.resources.statusUpdates) != 1 || f.resources.statusUpdates[0] != model.ResourceAvailable {
		t.Errorf("resource status updates = %v, want [available]", f.resources.statusUpdates)
	}
}

func TestReturnOverdueAssetSucceeds(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusCheckedOut)
	// Push the end time into the past so the booking reads as overdue.
	f.repo.bookings[id].EndTime = time.Now().UTC().Add(-time.Hour)

	b, err := f.svc.Return(context.Background(), id, &ReturnRequest{ReturnedBy: "emp-204"})
	if err != nil {
		t.Fatalf("overdue asset must still be returnable: %v", err)
	}
	if b.Status != model.StatusReturned {
		t.Errorf("status = %s, want returned", b.Status)
	}
}

func TestReturnWithoutCheckoutFails(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusConfirmed)

	_, err := f.svc.Return(context.Background(), id, &ReturnRequest{ReturnedBy: "emp-204"})
	if !apperrors.IsCode(err, apperrors.CodeInvalidStateTransition) {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestReturnRequiresActor(t *testing.T) {
	f := newFixture(t, testAsset(model.BookingRule{CheckoutRequired: true}))
	id := seedAssetBooking(f, model.StatusCheckedOut)

	_, err := f.svc.Return(context.Background(), id, &ReturnRequest{})
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
