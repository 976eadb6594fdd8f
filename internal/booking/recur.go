package booking

import (
	"math"
	"time"

	"salonbook/internal/schedule"
)

// Duration-to-days constants for bounding day-based series. The month and
// year values are deliberate approximations; changing them changes observable
// occurrence counts.
const (
	daysPerWeek  = 7
	daysPerMonth = 28
	daysPerYear  = 365
)

func (d DurationSpec) totalDays() float64 {
	switch d.Unit {
	case SpanWeek:
		return d.Amount * daysPerWeek
	case SpanMonth:
		return d.Amount * daysPerMonth
	case SpanYear:
		return d.Amount * daysPerYear
	default:
		return 0
	}
}

func (d DurationSpec) totalMonths() int {
	switch d.Unit {
	case SpanMonth:
		return int(d.Amount)
	case SpanYear:
		return int(d.Amount * 12)
	case SpanWeek:
		return int(d.Amount) / 4
	default:
		return 0
	}
}

// Expand turns (start date, pattern, total span) into the ordered list of
// occurrence dates. The first element is always the caller-supplied start
// date byte-for-byte; the anchor is never recomputed through the interval
// math. Expand never fails: an unparseable start date yields a single-element
// series, and date validation belongs to the boundary.
func Expand(start string, p RecurrencePattern, d DurationSpec) []string {
	if p.None() {
		return []string{start}
	}

	anchor, err := schedule.ParseDate(start, time.UTC)
	if err != nil {
		return []string{start}
	}

	if p.Unit == UnitMonth {
		return expandMonthly(start, anchor, p, d)
	}
	return expandDaily(start, anchor, p, d)
}

func expandDaily(start string, anchor time.Time, p RecurrencePattern, d DurationSpec) []string {
	intervalDays := p.Amount
	if p.Unit == UnitWeek {
		intervalDays = p.Amount * daysPerWeek
	}

	count := int(math.Floor(d.totalDays()/float64(intervalDays))) + 1

	dates := []string{start}
	cur := anchor
	for i := 1; i < count; i++ {
		cur = schedule.AddDays(cur, intervalDays)
		dates = append(dates, schedule.FormatDateLocal(cur))
	}
	return dates
}

func expandMonthly(start string, anchor time.Time, p RecurrencePattern, d DurationSpec) []string {
	count := d.totalMonths()/p.Amount + 1

	dates := []string{start}
	cur := anchor
	for i := 1; i < count; i++ {
		// Advance the month, not a day count, so "the 15th of each month"
		// holds. Once clamped to a short month the series continues from the
		// adjusted day; it does not snap back in longer months.
		cur = schedule.AddMonthsClamped(cur, p.Amount)
		formatted := schedule.FormatDateLocal(cur)
		if formatted < start {
			continue
		}
		dates = append(dates, formatted)
	}
	return dates
}
