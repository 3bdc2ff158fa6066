package model

import (
	"time"
)

// BookingStatus is a closed set; repositories and services only ever compare
// against these constants, never raw strings from callers.
type BookingStatus string

const (
	// StatusTentative is the initial status when the resource requires approval.
	StatusTentative BookingStatus = "tentative"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	// StatusCheckedOut means the asset has physically left with the requester.
	StatusCheckedOut BookingStatus = "checked_out"
	StatusReturned   BookingStatus = "returned"
	// StatusOverdue is derived at read time and never persisted.
	StatusOverdue BookingStatus = "overdue"
)

// NonTerminalStatuses are the statuses that still occupy a resource's
// timeline and therefore participate in overlap checks.
func NonTerminalStatuses() []BookingStatus {
	return []BookingStatus{StatusConfirmed, StatusTentative, StatusCheckedOut}
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

type BookingType string

const (
	BookingRoom  BookingType = "room"
	BookingAsset BookingType = "asset"
)

// Booking reserves a resource for a half-open interval [start_time, end_time).
type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrgID       string        `json:"org_id" bson:"org_id" validate:"required"`
	ResourceID  string        `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	BookingType BookingType   `json:"booking_type" bson:"booking_type" validate:"omitempty,oneof=room asset"`
	BookedBy    string        `json:"booked_by" bson:"booked_by" validate:"required,min=1,max=100"`
	Title       string        `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Purpose     string        `json:"purpose,omitempty" bson:"purpose" validate:"omitempty,max=500"`
	StartTime   time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status      BookingStatus `json:"status" bson:"status" validate:"omitempty,oneof=tentative confirmed cancelled checked_out returned"`

	AttendeeCount int     `json:"attendee_count,omitempty" bson:"attendee_count" validate:"omitempty,min=1"`
	EstimatedCost float64 `json:"estimated_cost,omitempty" bson:"estimated_cost"`

	// RelatedRecordID links the booking to an external domain record, e.g. an
	// interview the room was booked for.
	RelatedRecordID string `json:"related_record_id,omitempty" bson:"related_record_id"`

	Recurrence *RecurrencePattern `json:"recurrence,omitempty" bson:"recurrence,omitempty"`
	// SeriesID groups the occurrences created from one recurring request.
	SeriesID string `json:"series_id,omitempty" bson:"series_id"`

	CreatedAt          time.Time  `json:"created_at,omitempty" bson:"created_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty" bson:"cancelled_by"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason"`

	// Checkout lifecycle, asset bookings only.
	CheckedOutAt        *time.Time `json:"checked_out_at,omitempty" bson:"checked_out_at,omitempty"`
	CheckedOutBy        string     `json:"checked_out_by,omitempty" bson:"checked_out_by"`
	ReturnedAt          *time.Time `json:"returned_at,omitempty" bson:"returned_at,omitempty"`
	ReturnedBy          string     `json:"returned_by,omitempty" bson:"returned_by"`
	ConditionOnCheckout string     `json:"condition_on_checkout,omitempty" bson:"condition_on_checkout"`
	ConditionOnReturn   string     `json:"condition_on_return,omitempty" bson:"condition_on_return"`
	DamageReported      bool       `json:"damage_reported,omitempty" bson:"damage_reported"`
	DamageDescription   string     `json:"damage_description,omitempty" bson:"damage_description"`
	Notes               string     `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=1000"`
}

// EffectiveStatus derives the externally visible status. An asset still
// checked out past its end time reads as overdue; nothing is written back.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == StatusCheckedOut && now.After(b.EndTime) {
		return StatusOverdue
	}
	return b.Status
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// bookings (end == start) do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// BookingUpdate is a partial patch; nil / zero fields are left unchanged.
type BookingUpdate struct {
	Title         string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Purpose       *string    `json:"purpose,omitempty" validate:"omitempty,max=500"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	AttendeeCount *int       `json:"attendee_count,omitempty" validate:"omitempty,min=1"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ChangesInterval reports whether applying the patch moves the booked slot,
// which forces policy and availability to be re-checked.
func (u *BookingUpdate) ChangesInterval() bool {
	return u.StartTime != nil || u.EndTime != nil
}
