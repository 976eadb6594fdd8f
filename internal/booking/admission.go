package booking

import (
	"time"

	"salonbook/internal/clock"
	"salonbook/internal/directory"
	"salonbook/internal/schedule"
)

// AdmitOutcome reports what the per-date filters decided for one expanded
// series.
type AdmitOutcome struct {
	Admitted []Appointment
	// Conflict is the first inadmissible date in generation order. Only set
	// in strict mode, where it aborts the batch.
	Conflict *ConflictResult
	// SkippedPast counts dates before the anchor or before today. These are
	// edge effects of the interval math, not user-facing errors.
	SkippedPast int
	// SkippedConflicts counts inadmissible dates dropped in lenient mode.
	SkippedConflicts int
}

// Admit applies the per-date admissibility filters to an expanded series.
// proto carries every appointment field except the date; each admitted date
// yields a copy of proto stamped with it.
//
// Strict mode returns on the first conflict (booking creation aborts the
// whole batch). Lenient mode skips conflicting dates and keeps the rest
// (series regeneration / duplicate avoidance).
func Admit(dates []string, proto Appointment, svc directory.Service, staff directory.Staff, existing []Appointment, clk clock.Clock, lenient bool) AdmitOutcome {
	out := AdmitOutcome{Admitted: make([]Appointment, 0, len(dates))}
	if len(dates) == 0 {
		return out
	}

	anchor := dates[0]
	today := clk.Today()

	for _, date := range dates {
		if date < anchor || date < today {
			out.SkippedPast++
			continue
		}

		parsed, err := schedule.ParseDate(date, time.UTC)
		if err != nil {
			out.SkippedPast++
			continue
		}
		dayKey := schedule.WeekdayKey(parsed)

		var conflict *ConflictResult
		switch {
		case !svc.AvailableOn(dayKey):
			conflict = &ConflictResult{Reason: ReasonNonWorkingDay, Date: date}
		case !staff.WorksOn(dayKey):
			conflict = &ConflictResult{Reason: ReasonStaffNotWorking, Date: date}
		default:
			candidate := proto
			candidate.Date = date
			conflict = FindConflicts(candidate, existing, clk)
			if conflict == nil {
				if prior := FindOverlap(out.Admitted, date, candidate.StaffID, candidate.Start, candidate.End, candidate.ID); prior != nil {
					conflict = &ConflictResult{Reason: ReasonOverlap, Date: date, Appointment: prior}
				}
			}
		}

		if conflict != nil {
			if lenient {
				out.SkippedConflicts++
				continue
			}
			out.Conflict = conflict
			out.Admitted = nil
			return out
		}

		admitted := proto
		admitted.Date = date
		out.Admitted = append(out.Admitted, admitted)
	}

	return out
}
