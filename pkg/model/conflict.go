package model

import "time"

type ConflictType string

const (
	ConflictOverlap       ConflictType = "overlap"
	ConflictDoubleBooking ConflictType = "double_booking"
	ConflictMaintenance   ConflictType = "maintenance"
)

// BookingConflict records a detected collision between two bookings (or a
// booking and a maintenance hold) on the same resource, awaiting manual
// resolution. The validated create path never produces these; they come from
// race windows and externally detected collisions.
type BookingConflict struct {
	ID           string       `json:"id,omitempty" bson:"_id,omitempty"`
	OrgID        string       `json:"org_id" bson:"org_id" validate:"required"`
	ResourceType ResourceKind `json:"resource_type" bson:"resource_type" validate:"required,oneof=room asset"`
	ResourceID   string       `json:"resource_id" bson:"resource_id" validate:"required"`
	Booking1ID   string       `json:"booking1_id" bson:"booking1_id" validate:"required"`
	// Booking2ID is empty for maintenance conflicts, which have no second booking.
	Booking2ID   string       `json:"booking2_id,omitempty" bson:"booking2_id"`
	PeriodStart  time.Time    `json:"period_start" bson:"period_start" validate:"required"`
	PeriodEnd    time.Time    `json:"period_end" bson:"period_end" validate:"required,gtfield=PeriodStart"`
	ConflictType ConflictType `json:"conflict_type" bson:"conflict_type" validate:"required,oneof=overlap double_booking maintenance"`

	Resolved         bool       `json:"resolved" bson:"resolved"`
	ResolvedBy       string     `json:"resolved_by,omitempty" bson:"resolved_by"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolutionAction string     `json:"resolution_action,omitempty" bson:"resolution_action"`
	Notes            string     `json:"notes,omitempty" bson:"notes"`

	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at"`
}
