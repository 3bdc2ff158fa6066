package service

import (
	"fmt"
	"time"

	"reservo/pkg/model"
)

// evaluatePolicy checks a requested interval against the resource's booking
// rule and returns every violated rule, not just the first. A zero rule value
// means that bound is not enforced.
func evaluatePolicy(rule model.BookingRule, start, end, now time.Time) []string {
	var violations []string

	duration := end.Sub(start)

	if rule.MinDurationMin > 0 && duration < rule.MinDuration() {
		violations = append(violations, fmt.Sprintf(
			"min_duration: booking lasts %d minutes, minimum is %d",
			int(duration.Minutes()), rule.MinDurationMin,
		))
	}

	if rule.MaxDurationMin > 0 && duration > rule.MaxDuration() {
		violations = append(violations, fmt.Sprintf(
			"max_duration: booking lasts %d minutes, maximum is %d",
			int(duration.Minutes()), rule.MaxDurationMin,
		))
	}

	if rule.AdvanceBookingHours > 0 && start.Sub(now) < rule.AdvanceNotice() {
		violations = append(violations, fmt.Sprintf(
			"advance_booking_hours: booking must be placed at least %d hour(s) before start",
			rule.AdvanceBookingHours,
		))
	}

	if rule.MaxAdvanceDays > 0 && start.Sub(now) > rule.BookingHorizon() {
		violations = append(violations, fmt.Sprintf(
			"max_advance_days: booking starts more than %d day(s) ahead",
			rule.MaxAdvanceDays,
		))
	}

	return violations
}
