package model

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurrencePattern expands one booking request into many occurrences.
// Termination is governed by EndDate (inclusive) or Occurrences; when both
// are set, whichever is reached first stops generation.
type RecurrencePattern struct {
	Frequency Frequency `json:"frequency" bson:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval  int       `json:"interval" bson:"interval" validate:"required,min=1,max=52"`
	// Weekdays restricts weekly patterns to the named days.
	Weekdays    []string   `json:"weekdays,omitempty" bson:"weekdays" validate:"omitempty,max=7,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	EndDate     *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Occurrences *int       `json:"occurrences,omitempty" bson:"occurrences,omitempty" validate:"omitempty,min=1"`
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// WeekdaySet resolves the weekday mask; an empty mask returns nil, meaning
// every day in the cadence matches.
func (p *RecurrencePattern) WeekdaySet() map[time.Weekday]bool {
	if len(p.Weekdays) == 0 {
		return nil
	}
	set := make(map[time.Weekday]bool, len(p.Weekdays))
	for _, name := range p.Weekdays {
		if d, ok := weekdayNames[name]; ok {
			set[d] = true
		}
	}
	return set
}

// HasTermination reports whether the pattern can terminate at all.
func (p *RecurrencePattern) HasTermination() bool {
	return p.EndDate != nil || p.Occurrences != nil
}
