package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate     = errors.New("invalid date format")
	ErrInvalidTime     = errors.New("invalid time format")
	ErrInvalidDuration = errors.New("invalid duration")
)

// WeekdayKeys maps time.Weekday (Sunday = 0) to the day keys used by staff
// working-hours records and service available-days sets.
var WeekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func WeekdayKey(t time.Time) string {
	return WeekdayKeys[int(t.Weekday())]
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse(ClockLayout, timeStr); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}

	parsed, err := time.ParseInLocation(DateLayout+" "+ClockLayout, dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

func ParseClockToMinutes(timeStr string) (int, error) {
	tm, err := time.Parse(ClockLayout, timeStr)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return tm.Hour()*60 + tm.Minute(), nil
}

// ParseClockHours returns the clock value as decimal hours ("09:30" -> 9.5).
func ParseClockHours(timeStr string) (float64, error) {
	minutes, err := ParseClockToMinutes(timeStr)
	if err != nil {
		return 0, err
	}
	return float64(minutes) / 60, nil
}

func MinutesToClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// CalculateEndTime adds durationMinutes to a start clock with hour rollover.
// The result is assumed to stay within the same day; callers must not pass
// windows that cross midnight.
func CalculateEndTime(start string, durationMinutes int) (string, error) {
	if durationMinutes <= 0 {
		return "", ErrInvalidDuration
	}
	startMin, err := ParseClockToMinutes(start)
	if err != nil {
		return "", err
	}
	return MinutesToClock(startMin + durationMinutes), nil
}

// FormatDateLocal renders a date from its own local calendar fields. It never
// round-trips through UTC, so the date cannot drift by a day across timezones.
func FormatDateLocal(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	startToday := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	return date.Before(startToday), nil
}

func IsSlotPast(dateStr, timeStr string, loc *time.Location, now time.Time) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return !slot.After(now.In(loc)), nil
}

type Interval struct {
	Start int
	End   int
}

// Overlaps reports half-open interval overlap: touching endpoints do not
// overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// RangesOverlap is the half-open overlap test over HH:MM clock strings.
// Zero-padded clocks order lexicographically, so plain string comparison is
// chronological comparison.
func RangesOverlap(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// SlotsBetween generates slot start clocks from startClock up to the last
// start whose window of `duration` minutes still fits before endClock.
func SlotsBetween(startClock, endClock string, duration int) ([]string, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	startMin, err := ParseClockToMinutes(startClock)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseClockToMinutes(endClock)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0)
	for cursor := startMin; cursor+duration <= endMin; cursor += duration {
		slots = append(slots, MinutesToClock(cursor))
	}
	return slots, nil
}

func FilterOverlapping(slots []string, duration int, reserved []Interval) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		start, err := ParseClockToMinutes(s)
		if err != nil {
			return nil, err
		}
		current := Interval{Start: start, End: start + duration}
		overlap := false
		for _, r := range reserved {
			if Overlaps(current, r) {
				overlap = true
				break
			}
		}
		if !overlap {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func FilterPastSlots(dateStr string, slots []string, loc *time.Location, now time.Time) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		past, err := IsSlotPast(dateStr, s, loc, now)
		if err != nil {
			return nil, err
		}
		if !past {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped advances the month while preserving the day-of-month. When
// the target month is shorter, the day is pulled back to the month's last
// valid day (31 Jan -> 28/29 Feb). Unlike time.AddDate it never normalizes
// into the following month.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	totalMonth := int(month) - 1 + months
	targetYear := year + totalMonth/12
	targetMonth := time.Month(totalMonth%12 + 1)
	if totalMonth < 0 {
		targetYear = year + (totalMonth-11)/12
		targetMonth = time.Month((totalMonth%12+12)%12 + 1)
	}
	if max := DaysInMonth(targetYear, targetMonth); day > max {
		day = max
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, t.Location())
}

// MonthMatrix returns exactly 42 consecutive days (6 full weeks) starting at
// the Sunday of the week containing the 1st of t's month. This is the grid a
// month-view date picker renders.
func MonthMatrix(t time.Time) []time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	start := AddDays(first, -int(first.Weekday()))

	days := make([]time.Time, 0, 42)
	for i := 0; i < 42; i++ {
		days = append(days, AddDays(start, i))
	}
	return days
}
