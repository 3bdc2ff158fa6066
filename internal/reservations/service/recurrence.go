package service

import (
	"time"

	"reservo/pkg/model"
)

// occurrence is one expanded slot of a recurring request. The duration of
// every occurrence equals the duration of the first.
type occurrence struct {
	Start time.Time
	End   time.Time
}

// expandRecurrence materializes a recurring request into concrete slots,
// starting from the requested first interval. Generation stops at the
// pattern's end date (inclusive, compared by calendar day in the slot's
// location), at the pattern's occurrence count, or at hardCap, whichever is
// reached first.
func expandRecurrence(pattern *model.RecurrencePattern, firstStart, firstEnd time.Time, hardCap int) []occurrence {
	if pattern == nil {
		return []occurrence{{Start: firstStart, End: firstEnd}}
	}

	limit := hardCap
	if pattern.Occurrences != nil && *pattern.Occurrences < limit {
		limit = *pattern.Occurrences
	}
	if limit < 1 {
		return nil
	}

	duration := firstEnd.Sub(firstStart)
	weekdays := pattern.WeekdaySet()

	var result []occurrence
	emit := func(start time.Time) bool {
		if pattern.EndDate != nil && afterEndDate(start, *pattern.EndDate) {
			return false
		}
		result = append(result, occurrence{Start: start, End: start.Add(duration)})
		return len(result) < limit
	}

	switch pattern.Frequency {
	case model.FrequencyDaily:
		step := pattern.Interval
		for start := firstStart; ; start = start.AddDate(0, 0, step) {
			if !emit(start) {
				return result
			}
		}

	case model.FrequencyWeekly:
		if weekdays == nil {
			step := 7 * pattern.Interval
			for start := firstStart; ; start = start.AddDate(0, 0, step) {
				if !emit(start) {
					return result
				}
			}
		}
		// With a weekday mask, walk day by day and keep days whose weekday is
		// in the mask and whose week falls on the interval cadence. The week
		// containing the first start is week zero.
		weekAnchor := startOfWeek(firstStart)
		for start := firstStart; ; start = start.AddDate(0, 0, 1) {
			weeks := int(startOfWeek(start).Sub(weekAnchor).Hours()) / (24 * 7)
			if weeks%pattern.Interval != 0 {
				continue
			}
			if !weekdays[start.Weekday()] {
				continue
			}
			if !emit(start) {
				return result
			}
		}

	case model.FrequencyMonthly:
		// Months shorter than the anchor day skip that cycle; Jan 31 monthly
		// never lands on Feb 28.
		for i := 0; ; i++ {
			start := firstStart.AddDate(0, i*pattern.Interval, 0)
			if start.Day() != firstStart.Day() {
				continue
			}
			if pattern.EndDate != nil && afterEndDate(start, *pattern.EndDate) {
				return result
			}
			result = append(result, occurrence{Start: start, End: start.Add(duration)})
			if len(result) >= limit {
				return result
			}
		}
	}

	return result
}

// afterEndDate reports whether the occurrence start falls on a later calendar
// day than the pattern's end date. Occurrences on the end date itself are
// still generated.
func afterEndDate(start, endDate time.Time) bool {
	y1, m1, d1 := start.In(endDate.Location()).Date()
	y2, m2, d2 := endDate.Date()
	if y1 != y2 {
		return y1 > y2
	}
	if m1 != m2 {
		return m1 > m2
	}
	return d1 > d2
}

// startOfWeek truncates to the Sunday midnight beginning the week.
func startOfWeek(t time.Time) time.Time {
	t = t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
