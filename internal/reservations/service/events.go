package service

import (
	"context"
	"time"

	"reservo/pkg/events"
	"reservo/pkg/middleware"
	"reservo/pkg/model"
)

// EventPublisher is what the service needs from the broker layer. A nil
// publisher disables event emission without branching at every call site.
type EventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}

type bookingEvent struct {
	BookingID  string    `json:"booking_id"`
	OrgID      string    `json:"org_id"`
	ResourceID string    `json:"resource_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	SeriesID   string    `json:"series_id,omitempty"`
	Actor      string    `json:"actor,omitempty"`
}

// publishBookingEvent emits best effort; a broker failure never fails the
// request that triggered it.
func (s *reservationService) publishBookingEvent(ctx context.Context, eventType string, booking *model.Booking, actor string) {
	if s.publisher == nil {
		return
	}

	msg := events.NewMessage().
		WithKey(booking.ResourceID).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithValue(bookingEvent{
			BookingID:  booking.ID,
			OrgID:      booking.OrgID,
			ResourceID: booking.ResourceID,
			Status:     string(booking.Status),
			StartTime:  booking.StartTime,
			EndTime:    booking.EndTime,
			SeriesID:   booking.SeriesID,
			Actor:      actor,
		}).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
