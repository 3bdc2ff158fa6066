package service

import (
	"context"
	"time"

	apperrors "reservo/pkg/errors"
)

// collidingBookingIDs returns the ids of non-terminal bookings that overlap
// the half-open interval [start, end) on the resource. excludeID skips the
// booking being rescheduled so it does not collide with itself.
func (s *reservationService) collidingBookingIDs(ctx context.Context, resourceID string, start, end time.Time, excludeID string) ([]string, error) {
	overlapping, err := s.repo.FindOverlapping(ctx, resourceID, start, end, excludeID, s.cfg.OverlapScanLimit)
	if err != nil {
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	if len(overlapping) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(overlapping))
	for _, b := range overlapping {
		ids = append(ids, b.ID)
	}
	return ids, nil
}
