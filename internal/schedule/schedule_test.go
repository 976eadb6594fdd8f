package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestCalculateEndTime(t *testing.T) {
	end, err := CalculateEndTime("09:30", 45)
	if err != nil {
		t.Fatalf("CalculateEndTime error: %v", err)
	}
	if end != "10:15" {
		t.Fatalf("expected 10:15, got %s", end)
	}

	end, err = CalculateEndTime("09:45", 30)
	if err != nil {
		t.Fatalf("CalculateEndTime error: %v", err)
	}
	if end != "10:15" {
		t.Fatalf("expected hour rollover to 10:15, got %s", end)
	}

	if _, err := CalculateEndTime("09:00", 0); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestParseClockHours(t *testing.T) {
	hours, err := ParseClockHours("09:30")
	if err != nil {
		t.Fatalf("ParseClockHours error: %v", err)
	}
	if hours != 9.5 {
		t.Fatalf("expected 9.5, got %v", hours)
	}
}

func TestRangesOverlapHalfOpen(t *testing.T) {
	if !RangesOverlap("09:00", "10:00", "09:30", "10:30") {
		t.Fatalf("expected overlap")
	}
	if RangesOverlap("09:00", "10:00", "10:00", "11:00") {
		t.Fatalf("touching windows must not overlap")
	}
	if RangesOverlap("10:00", "11:00", "09:00", "10:00") {
		t.Fatalf("touching windows must not overlap (reversed)")
	}
	if !RangesOverlap("09:00", "12:00", "10:00", "10:30") {
		t.Fatalf("contained window must overlap")
	}
}

func TestSlotsBetween(t *testing.T) {
	slots, err := SlotsBetween("09:00", "12:00", 45)
	if err != nil {
		t.Fatalf("SlotsBetween error: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d: %v", len(slots), slots)
	}
	if slots[0] != "09:00" || slots[3] != "11:15" {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestFilterOverlapping(t *testing.T) {
	slots := []string{"09:00", "09:30", "10:00", "10:30"}
	reserved := []Interval{{Start: 9*60 + 30, End: 10 * 60}}
	filtered, err := FilterOverlapping(slots, 30, reserved)
	if err != nil {
		t.Fatalf("FilterOverlapping error: %v", err)
	}
	if len(filtered) != 3 {
		t.Fatalf("expected 3 slots, got %v", filtered)
	}
	for _, s := range filtered {
		if s == "09:30" {
			t.Fatalf("reserved slot not filtered: %v", filtered)
		}
	}
}

func TestIsDatePast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, loc)

	past, err := IsDatePast("2024-03-09", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if !past {
		t.Fatalf("expected yesterday to be past")
	}

	past, err = IsDatePast("2024-03-10", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if past {
		t.Fatalf("today must not be past")
	}
}

func TestFilterPastSlots(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2024, 3, 10, 10, 30, 0, 0, loc)
	slots := []string{"09:00", "10:30", "11:00"}

	filtered, err := FilterPastSlots("2024-03-10", slots, loc, now)
	if err != nil {
		t.Fatalf("FilterPastSlots error: %v", err)
	}
	if len(filtered) != 1 || filtered[0] != "11:00" {
		t.Fatalf("expected only 11:00 to remain, got %v", filtered)
	}
}

func TestAddMonthsClampedLeapYear(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	feb := AddMonthsClamped(jan31, 1)
	if FormatDateLocal(feb) != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", FormatDateLocal(feb))
	}

	// Once clamped, the series stays on the adjusted day.
	mar := AddMonthsClamped(feb, 1)
	if FormatDateLocal(mar) != "2024-03-29" {
		t.Fatalf("expected 2024-03-29, got %s", FormatDateLocal(mar))
	}
}

func TestAddMonthsClampedYearBoundary(t *testing.T) {
	nov := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	feb := AddMonthsClamped(nov, 3)
	if FormatDateLocal(feb) != "2025-02-15" {
		t.Fatalf("expected 2025-02-15, got %s", FormatDateLocal(feb))
	}
}

func TestWeekdayKey(t *testing.T) {
	// 2024-01-15 is a Monday.
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if WeekdayKey(d) != "mon" {
		t.Fatalf("expected mon, got %s", WeekdayKey(d))
	}
	if WeekdayKey(AddDays(d, 6)) != "sun" {
		t.Fatalf("expected sun, got %s", WeekdayKey(AddDays(d, 6)))
	}
}

func TestMonthMatrix(t *testing.T) {
	// February 2024: the 1st is a Thursday, so the grid starts Sunday Jan 28.
	days := MonthMatrix(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if len(days) != 42 {
		t.Fatalf("expected 42 cells, got %d", len(days))
	}
	if FormatDateLocal(days[0]) != "2024-01-28" {
		t.Fatalf("expected grid to start 2024-01-28, got %s", FormatDateLocal(days[0]))
	}
	if days[0].Weekday() != time.Sunday {
		t.Fatalf("grid must start on Sunday")
	}
	if FormatDateLocal(days[41]) != "2024-03-09" {
		t.Fatalf("expected grid to end 2024-03-09, got %s", FormatDateLocal(days[41]))
	}
}
