package model

import "time"

type ResourceKind string

const (
	ResourceRoom  ResourceKind = "room"
	ResourceAsset ResourceKind = "asset"
)

type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceInUse       ResourceStatus = "in_use"
	ResourceMaintenance ResourceStatus = "maintenance"
	ResourceRetired     ResourceStatus = "retired"
)

// BookingRule is the per-resource reservation policy. Durations are stored in
// minutes and lead time in hours, matching the persisted field contract; zero
// means the bound is not set.
type BookingRule struct {
	MinDurationMin      int  `json:"min_duration" bson:"min_duration" validate:"omitempty,min=0"`
	MaxDurationMin      int  `json:"max_duration" bson:"max_duration" validate:"omitempty,min=0"`
	AdvanceBookingHours int  `json:"advance_booking_hours" bson:"advance_booking_hours" validate:"omitempty,min=0"`
	MaxAdvanceDays      int  `json:"max_advance_days" bson:"max_advance_days" validate:"omitempty,min=0"`
	RequiresApproval    bool `json:"requires_approval" bson:"requires_approval"`
	CheckoutRequired    bool `json:"checkout_required,omitempty" bson:"checkout_required"`
}

func (r BookingRule) MinDuration() time.Duration {
	return time.Duration(r.MinDurationMin) * time.Minute
}

func (r BookingRule) MaxDuration() time.Duration {
	return time.Duration(r.MaxDurationMin) * time.Minute
}

func (r BookingRule) AdvanceNotice() time.Duration {
	return time.Duration(r.AdvanceBookingHours) * time.Hour
}

func (r BookingRule) BookingHorizon() time.Duration {
	return time.Duration(r.MaxAdvanceDays) * 24 * time.Hour
}

// Resource is a bookable room or asset. The reservation engine only reads
// resources; catalog management owns their lifecycle.
type Resource struct {
	ID         string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrgID      string         `json:"org_id" bson:"org_id" validate:"required"`
	Name       string         `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Kind       ResourceKind   `json:"kind" bson:"kind" validate:"required,oneof=room asset"`
	Location   string         `json:"location,omitempty" bson:"location"`
	Category   string         `json:"category,omitempty" bson:"category"`
	Capacity   int            `json:"capacity,omitempty" bson:"capacity" validate:"omitempty,min=1"`
	HourlyRate float64        `json:"hourly_rate,omitempty" bson:"hourly_rate" validate:"omitempty,min=0"`
	Status     ResourceStatus `json:"status" bson:"status" validate:"required,oneof=available in_use maintenance retired"`
	IsActive   bool           `json:"is_active" bson:"is_active"`
	Rule       BookingRule    `json:"booking_rule" bson:"booking_rule"`
	CreatedAt  time.Time      `json:"created_at,omitempty" bson:"created_at"`
}

// Bookable reports whether the catalog allows new reservations at all.
// Interval-level availability is the AvailabilityChecker's job.
func (r *Resource) Bookable() bool {
	return r.IsActive && r.Status != ResourceRetired
}

type ResourceFilter struct {
	Kind     ResourceKind
	Category string
	Location string
	IsActive *bool
}
