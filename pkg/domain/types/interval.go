package types

import (
	"fmt"
	"time"
)

// RecurringInterval represents how often a template spawns tasks
type RecurringInterval string

const (
	IntervalDaily       RecurringInterval = "daily"
	IntervalWeekly      RecurringInterval = "weekly"
	IntervalFortnightly RecurringInterval = "fortnightly"
	IntervalMonthly     RecurringInterval = "monthly"
	IntervalQuarterly   RecurringInterval = "quarterly"
	IntervalHalfyearly  RecurringInterval = "halfyearly"
	IntervalAnnual      RecurringInterval = "annual"
)

// AllRecurringIntervals returns all valid recurring intervals
func AllRecurringIntervals() []RecurringInterval {
	return []RecurringInterval{
		IntervalDaily,
		IntervalWeekly,
		IntervalFortnightly,
		IntervalMonthly,
		IntervalQuarterly,
		IntervalHalfyearly,
		IntervalAnnual,
	}
}

// IsValid checks if the recurring interval is valid
func (i RecurringInterval) IsValid() bool {
	switch i {
	case IntervalDaily,
		IntervalWeekly,
		IntervalFortnightly,
		IntervalMonthly,
		IntervalQuarterly,
		IntervalHalfyearly,
		IntervalAnnual:
		return true
	default:
		return false
	}
}

// IsMonthBound reports whether templates of this interval carry a repeat
// month and piggyback on the monthly expansion run.
func (i RecurringInterval) IsMonthBound() bool {
	return i == IntervalHalfyearly || i == IntervalAnnual
}

// PeriodKey returns the canonical key of the calendar period containing t.
// Tasks generated for the same (template, period) pair share this key, which
// makes expansion idempotent.
func (i RecurringInterval) PeriodKey(t time.Time) string {
	switch i {
	case IntervalDaily:
		return t.Format("2006-01-02")
	case IntervalWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case IntervalFortnightly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-F%02d", year, (week+1)/2)
	case IntervalMonthly:
		return t.Format("2006-01")
	case IntervalQuarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case IntervalHalfyearly:
		return fmt.Sprintf("%04d-H%d", t.Year(), (int(t.Month())-1)/6+1)
	case IntervalAnnual:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// String returns the string representation of the recurring interval
func (i RecurringInterval) String() string {
	return string(i)
}

// ParseRecurringInterval parses a string into a RecurringInterval
func ParseRecurringInterval(s string) (RecurringInterval, error) {
	interval := RecurringInterval(s)
	if !interval.IsValid() {
		return "", fmt.Errorf("invalid recurring interval: %s", s)
	}
	return interval, nil
}
