package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/clock"
	"salonbook/internal/directory"
	"salonbook/internal/schedule"
	"salonbook/internal/store"
)

var ErrOutsideBookingWindow = errors.New("time outside service booking window")

// ValidationError reports required draft fields still missing at commit
// time. The flow stays open and nothing is mutated.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

type CommitResult struct {
	Appointments      []booking.Appointment   `json:"appointments,omitempty"`
	Waitlist          *booking.WaitlistEntry  `json:"waitlist,omitempty"`
	Conflict          *booking.ConflictResult `json:"conflict,omitempty"`
	SkippedPast       int                     `json:"skippedPast,omitempty"`
	DuplicatesSkipped int                     `json:"duplicatesSkipped,omitempty"`
}

// Committed reports whether the flow should close.
func (r CommitResult) Committed() bool {
	return r.Conflict == nil
}

// Committer turns an applied draft into appointments or a waitlist entry.
type Committer struct {
	Store *store.Store
	Dir   directory.Repository
	Clock clock.Clock
	Log   *slog.Logger
}

// Commit validates the draft, expands its recurrence and admits the batch.
// On conflict it reopens the session at the service step and returns the
// ConflictResult as a value, so the user can change the service or time and
// retry without losing progress.
func (c *Committer) Commit(ctx context.Context, s *Session) (CommitResult, error) {
	d := s.Draft

	var missing []string
	if !d.hasClient() {
		missing = append(missing, "client")
	}
	if d.ServiceID == "" {
		missing = append(missing, "service")
	}
	if d.Date == "" {
		missing = append(missing, "date")
	}
	if s.Mode == ModeBooking && d.Time == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return CommitResult{}, &ValidationError{Missing: missing}
	}

	svc, err := c.Dir.ServiceByID(ctx, d.ServiceID)
	if err != nil {
		return CommitResult{}, err
	}

	if s.Mode == ModeWaitlist {
		return c.commitWaitlist(ctx, d, svc)
	}
	return c.commitBooking(ctx, s, d, svc)
}

func (c *Committer) commitWaitlist(ctx context.Context, d Draft, svc directory.Service) (CommitResult, error) {
	entry := c.Store.AddWaitlist(ctx, booking.WaitlistEntry{
		ClientID:    d.ClientID,
		ClientName:  d.ClientName,
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Date:        d.Date,
		Time:        d.Time,
		Status:      booking.WaitlistWaiting,
	})

	c.Log.Info("flow commit: waitlist entry created",
		slog.String("entry_id", entry.ID),
		slog.String("service_id", entry.ServiceID),
		slog.String("date", entry.Date),
	)
	return CommitResult{Waitlist: &entry}, nil
}

func (c *Committer) commitBooking(ctx context.Context, s *Session, d Draft, svc directory.Service) (CommitResult, error) {
	if svc.EarliestBookingTime != "" && d.Time < svc.EarliestBookingTime {
		return CommitResult{}, ErrOutsideBookingWindow
	}
	if svc.LatestBookingTime != "" && d.Time > svc.LatestBookingTime {
		return CommitResult{}, ErrOutsideBookingWindow
	}

	staff, err := c.resolveStaff(ctx, d)
	if err != nil {
		return CommitResult{}, err
	}

	duration := svc.Duration
	if duration <= 0 {
		return CommitResult{}, fmt.Errorf("service %s has no duration", svc.ID)
	}
	end, err := schedule.CalculateEndTime(d.Time, duration)
	if err != nil {
		return CommitResult{}, err
	}

	proto := booking.Appointment{
		Start:       d.Time,
		End:         end,
		StaffID:     staff.ID,
		ClientID:    d.ClientID,
		ClientName:  d.ClientName,
		ClientEmail: d.ClientEmail,
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Price:       svc.Price,
		Status:      booking.StatusScheduled,
	}

	dates := booking.Expand(d.Date, d.Recurrence, d.Span)
	out := booking.Admit(dates, proto, svc, staff, c.Store.Appointments(), c.Clock, false)
	if out.Conflict != nil {
		// Recoverable: reopen at the service step so the user can re-pick
		// and retry instead of losing the whole draft.
		_ = s.GoTo(StepService)
		c.Log.Info("flow commit: conflict",
			slog.String("reason", string(out.Conflict.Reason)),
			slog.String("date", out.Conflict.Date),
		)
		return CommitResult{Conflict: out.Conflict, SkippedPast: out.SkippedPast}, nil
	}

	before := c.Store.DuplicatesSkipped()
	created, err := c.Store.CreateBatch(ctx, out.Admitted, true, c.Clock)
	if err != nil {
		var bc *store.BatchConflictError
		if errors.As(err, &bc) {
			_ = s.GoTo(StepService)
			return CommitResult{Conflict: bc.Result}, nil
		}
		return CommitResult{}, err
	}

	c.Log.Info("flow commit: booked",
		slog.String("staff_id", staff.ID),
		slog.String("service_id", svc.ID),
		slog.String("anchor", d.Date),
		slog.Int("occurrences", len(created)),
	)
	return CommitResult{
		Appointments:      created,
		SkippedPast:       out.SkippedPast,
		DuplicatesSkipped: c.Store.DuplicatesSkipped() - before,
	}, nil
}

func (c *Committer) resolveStaff(ctx context.Context, d Draft) (directory.Staff, error) {
	if d.StaffID != "" {
		return c.Dir.StaffByID(ctx, d.StaffID)
	}

	parsed, err := schedule.ParseDate(d.Date, time.UTC)
	if err != nil {
		return directory.Staff{}, err
	}
	return c.Dir.FirstAvailableStaff(ctx, schedule.WeekdayKey(parsed))
}
