package booking

import (
	"salonbook/internal/clock"
	"salonbook/internal/schedule"
)

// FindOverlap scans appointments on the given date for the given staff member
// and returns the first one whose [start,end) window overlaps the candidate
// window. excludeID skips the appointment being moved or edited; an empty
// excludeID excludes nothing, since unminted candidates all share the empty
// id. Canceled appointments never count.
func FindOverlap(appts []Appointment, date, staffID, start, end, excludeID string) *Appointment {
	for i := range appts {
		a := &appts[i]
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.Date != date || a.StaffID != staffID {
			continue
		}
		if a.Status == StatusCanceled {
			continue
		}
		if schedule.RangesOverlap(start, end, a.Start, a.End) {
			return a
		}
	}
	return nil
}

// futureRelevant re-derives relevance from the evaluation instant instead of
// a stored flag: dates strictly before today are out, and today's
// appointments whose end clock has already elapsed are out.
func futureRelevant(a Appointment, today, nowClock string) bool {
	if a.Status == StatusCanceled {
		return false
	}
	if a.Date < today {
		return false
	}
	if a.Date == today && a.End <= nowClock {
		return false
	}
	return true
}

// FindConflicts tests one candidate against the future-relevant subset of the
// existing appointments. Returns nil when the candidate is admissible.
func FindConflicts(candidate Appointment, existing []Appointment, clk clock.Clock) *ConflictResult {
	today := clk.Today()
	nowClock := clk.CurrentClock()

	for i := range existing {
		a := &existing[i]
		if !futureRelevant(*a, today, nowClock) {
			continue
		}
		if a.ID != "" && a.ID == candidate.ID {
			continue
		}
		if a.Date != candidate.Date || a.StaffID != candidate.StaffID {
			continue
		}
		if schedule.RangesOverlap(candidate.Start, candidate.End, a.Start, a.End) {
			return &ConflictResult{
				Reason:      ReasonOverlap,
				Date:        candidate.Date,
				Appointment: a,
			}
		}
	}
	return nil
}

// FindBatchConflicts checks candidates in generation order, each against the
// existing set and against the candidates before it, and reports the first
// conflict found. One conflict anywhere aborts the whole batch; partial
// admission is never attempted.
func FindBatchConflicts(candidates, existing []Appointment, clk clock.Clock) *ConflictResult {
	for i := range candidates {
		c := candidates[i]
		if res := FindConflicts(c, existing, clk); res != nil {
			return res
		}
		if prior := FindOverlap(candidates[:i], c.Date, c.StaffID, c.Start, c.End, c.ID); prior != nil {
			return &ConflictResult{
				Reason:      ReasonOverlap,
				Date:        c.Date,
				Appointment: prior,
			}
		}
	}
	return nil
}
