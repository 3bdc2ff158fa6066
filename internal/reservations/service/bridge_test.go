package service

import (
	"context"
	"testing"
	"time"

	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
)

func newBridgeFixture(t *testing.T, resources ...*model.Resource) (*serviceFixture, BridgeService) {
	t.Helper()
	f := newFixture(t, resources...)
	bridge := NewBridgeService(f.svc, f.repo, testConfig())
	return f, bridge
}

func TestBookForRecordBundle(t *testing.T) {
	f, bridge := newBridgeFixture(t, testRoom(model.BookingRule{}), testAsset(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := bridge.BookForRecord(context.Background(), "rec-42", &BundleRequest{
		OrgID:     "org-1",
		BookedBy:  "recruiter-9",
		Title:     "Final interview",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		RoomID:    testRoomID,
		AssetIDs:  []string{testAssetID},
	})
	if err != nil {
		t.Fatalf("bundle failed: %v", err)
	}

	if len(result.Booked) != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected 2 booked / 0 failed, got %d/%d", len(result.Booked), len(result.Failed))
	}
	for _, b := range result.Booked {
		if b.RelatedRecordID != "rec-42" {
			t.Errorf("booking %s missing record link, got %q", b.ID, b.RelatedRecordID)
		}
	}
	_ = f
}

func TestBookForRecordPartialFailureKeepsSurvivors(t *testing.T) {
	f, bridge := newBridgeFixture(t, testRoom(model.BookingRule{}), testAsset(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	// Occupy the asset so only the room can be booked.
	if _, err := f.svc.Create(context.Background(), newBookingRequest(testAssetID, start, time.Hour)); err != nil {
		t.Fatalf("blocker booking failed: %v", err)
	}

	result, err := bridge.BookForRecord(context.Background(), "rec-43", &BundleRequest{
		OrgID:     "org-1",
		BookedBy:  "recruiter-9",
		Title:     "Final interview",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		RoomID:    testRoomID,
		AssetIDs:  []string{testAssetID},
	})
	if err != nil {
		t.Fatalf("bundle should report partial failure, not error: %v", err)
	}

	if len(result.Booked) != 1 {
		t.Fatalf("expected the room booking to survive, got %d booked", len(result.Booked))
	}
	if result.Booked[0].ResourceID != testRoomID {
		t.Errorf("surviving booking is on %s, want %s", result.Booked[0].ResourceID, testRoomID)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	failure := result.Failed[0]
	if failure.ResourceID != testAssetID || failure.Code != apperrors.CodeAvailabilityConflict {
		t.Errorf("failure = %+v, want asset with AVAILABILITY_CONFLICT", failure)
	}
}

func TestBookForRecordRequiresResources(t *testing.T) {
	_, bridge := newBridgeFixture(t)

	_, err := bridge.BookForRecord(context.Background(), "rec-44", &BundleRequest{
		OrgID:     "org-1",
		BookedBy:  "recruiter-9",
		Title:     "Final interview",
		StartTime: time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 14, 11, 0, 0, 0, time.UTC),
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for empty bundle, got %v", err)
	}
}

func TestCancelForRecordToleratesTerminal(t *testing.T) {
	f, bridge := newBridgeFixture(t, testRoom(model.BookingRule{}), testAsset(model.BookingRule{}))
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	result, err := bridge.BookForRecord(context.Background(), "rec-45", &BundleRequest{
		OrgID:     "org-1",
		BookedBy:  "recruiter-9",
		Title:     "Final interview",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		RoomID:    testRoomID,
		AssetIDs:  []string{testAssetID},
	})
	if err != nil {
		t.Fatalf("bundle failed: %v", err)
	}

	// Cancel one of the two ahead of time; the record-level cancel must not
	// trip over it.
	if _, err := f.svc.Cancel(context.Background(), result.Booked[0].ID, "recruiter-9", "candidate withdrew"); err != nil {
		t.Fatalf("pre-cancel failed: %v", err)
	}

	cancelled, err := bridge.CancelForRecord(context.Background(), "rec-45", "recruiter-9", "candidate withdrew")
	if err != nil {
		t.Fatalf("record cancel failed: %v", err)
	}
	if len(cancelled) != 1 {
		t.Errorf("expected 1 newly cancelled booking, got %d", len(cancelled))
	}

	remaining, err := bridge.GetForRecord(context.Background(), "rec-45")
	if err != nil {
		t.Fatalf("get for record failed: %v", err)
	}
	for _, b := range remaining {
		if b.Status != model.StatusCancelled {
			t.Errorf("booking %s status = %s, want cancelled", b.ID, b.Status)
		}
	}
}

func TestGetForRecordEmptyID(t *testing.T) {
	_, bridge := newBridgeFixture(t)

	if _, err := bridge.GetForRecord(context.Background(), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
