package flow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/clock"
	"salonbook/internal/directory"
	"salonbook/internal/persist"
	"salonbook/internal/store"
)

type fakeDirectory struct {
	staff    []directory.Staff
	services []directory.Service
}

func (f *fakeDirectory) StaffByID(ctx context.Context, id string) (directory.Staff, error) {
	for _, st := range f.staff {
		if st.ID == id {
			return st, nil
		}
	}
	return directory.Staff{}, directory.ErrStaffNotFound
}

func (f *fakeDirectory) ListStaff(ctx context.Context) ([]directory.Staff, error) {
	return f.staff, nil
}

func (f *fakeDirectory) FirstAvailableStaff(ctx context.Context, dayKey string) (directory.Staff, error) {
	for _, st := range f.staff {
		if st.Status == directory.StaffStatusActive && st.WorksOn(dayKey) {
			return st, nil
		}
	}
	return directory.Staff{}, directory.ErrNoStaffAvailable
}

func (f *fakeDirectory) ServiceByID(ctx context.Context, id string) (directory.Service, error) {
	for _, svc := range f.services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return directory.Service{}, directory.ErrServiceNotFound
}

func (f *fakeDirectory) ListServices(ctx context.Context) ([]directory.Service, error) {
	return f.services, nil
}

func (f *fakeDirectory) UpsertStaff(ctx context.Context, st directory.Staff) error { return nil }

func (f *fakeDirectory) UpsertService(ctx context.Context, svc directory.Service) error {
	return nil
}

func allWeekHours() map[string]directory.WorkingDay {
	hours := make(map[string]directory.WorkingDay, 7)
	for _, d := range []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"} {
		hours[d] = directory.WorkingDay{Active: true, StartTime: "09:00", EndTime: "18:00"}
	}
	return hours
}

func testCommitter(t *testing.T, clk clock.Clock) (*Committer, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(persist.NewNoop(), logger, time.UTC)

	dir := &fakeDirectory{
		staff: []directory.Staff{
			{ID: "s1", Name: "Camille", Status: directory.StaffStatusActive, WorkingHours: allWeekHours()},
		},
		services: []directory.Service{
			{ID: "svc1", Name: "Cut", Duration: 60, Price: 4500},
			{ID: "svc2", Name: "Color", Duration: 90, Price: 7500, EarliestBookingTime: "09:00", LatestBookingTime: "14:00"},
		},
	}

	return &Committer{Store: st, Dir: dir, Clock: clk, Log: logger}, st
}

func testClock(t *testing.T, date, clockStr string) clock.Fixed {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", date+" "+clockStr)
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	return clock.Fixed{T: parsed}
}

func TestSessionStepOrder(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})

	want := []Step{StepStaff, StepDate, StepTime, StepService, StepClient}
	for i, step := range want {
		if s.Step() != step {
			t.Fatalf("step %d: expected %s, got %s", i, step, s.Step())
		}
		s.Next()
	}
	// Next at the end stays put.
	if s.Step() != StepClient {
		t.Fatalf("expected clamp at client, got %s", s.Step())
	}

	s.Prev()
	if s.Step() != StepService {
		t.Fatalf("expected service after Prev, got %s", s.Step())
	}
}

func TestWaitlistModeSkipsStaff(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.Create(ModeWaitlist, Draft{})

	if s.Step() != StepDate {
		t.Fatalf("waitlist flow must start at date, got %s", s.Step())
	}
	if err := s.GoTo(StepStaff); err == nil {
		t.Fatalf("waitlist flow must not contain a staff step")
	}
}

func TestPrefilledSlotOpensAtService(t *testing.T) {
	m := NewManager(time.Hour)
	pre := Draft{}.WithStaff("s1").WithDate("2024-03-10").WithTime("10:00")
	s := m.Create(ModeBooking, pre)

	if s.Step() != StepService {
		t.Fatalf("prefilled session must open at service, got %s", s.Step())
	}
	if !s.Prefilled[StepStaff] || !s.Prefilled[StepDate] || !s.Prefilled[StepTime] {
		t.Fatalf("expected prefilled markers, got %+v", s.Prefilled)
	}

	// Prefilled steps stay freely editable.
	if err := s.GoTo(StepTime); err != nil {
		t.Fatalf("GoTo error: %v", err)
	}
	s.Draft = s.Draft.WithTime("11:00")
	if s.Draft.Time != "11:00" {
		t.Fatalf("expected time override")
	}
}

func TestSessionReset(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{}.WithStaff("s1").WithDate("2024-03-10").WithTime("10:00"))
	s.Draft = s.Draft.WithService("svc1").WithClient("c1", "Alice", "")

	s.Reset()
	if s.Draft != (Draft{}) {
		t.Fatalf("reset must clear the draft, got %+v", s.Draft)
	}
	if s.Step() != StepStaff {
		t.Fatalf("reset must return to the first step, got %s", s.Step())
	}
	if len(s.Prefilled) != 0 {
		t.Fatalf("reset must clear prefill markers")
	}
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(time.Minute)
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	s := m.Create(ModeBooking, Draft{})

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	// Creating another session prunes the stale one.
	m.Create(ModeBooking, Draft{})

	if err := m.Do(s.ID, func(*Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestCommitMissingFields(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, st := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})

	_, err := c.Commit(context.Background(), s)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Missing) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", ve.Missing)
	}
	if len(st.Appointments()) != 0 {
		t.Fatalf("failed commit must not create appointments")
	}
}

func TestCommitSingleBooking(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, st := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})
	s.Draft = s.Draft.
		WithStaff("s1").
		WithDate("2024-03-10").
		WithTime("10:00").
		WithService("svc1").
		WithClient("c1", "Alice", "alice@example.com")

	result, err := c.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if !result.Committed() {
		t.Fatalf("expected committed result, got %+v", result)
	}
	if len(result.Appointments) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(result.Appointments))
	}

	a := result.Appointments[0]
	if a.Date != "2024-03-10" || a.Start != "10:00" || a.End != "11:00" {
		t.Fatalf("unexpected window: %+v", a)
	}
	if a.ServiceName != "Cut" || a.Price != 4500 {
		t.Fatalf("service fields must be denormalized: %+v", a)
	}
	if len(st.Appointments()) != 1 {
		t.Fatalf("store must hold the appointment")
	}
}

func TestCommitRecurringSeries(t *testing.T) {
	clk := testClock(t, "2024-01-01", "08:00")
	c, st := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})
	s.Draft = s.Draft.
		WithStaff("s1").
		WithDate("2024-01-15").
		WithTime("10:00").
		WithService("svc1").
		WithClient("c1", "Alice", "").
		WithRecurrence(
			booking.RecurrencePattern{Unit: booking.UnitWeek, Amount: 1},
			booking.DurationSpec{Amount: 1, Unit: booking.SpanMonth},
		)

	result, err := c.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if len(result.Appointments) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(result.Appointments))
	}
	if result.Appointments[0].Date != "2024-01-15" || result.Appointments[4].Date != "2024-02-12" {
		t.Fatalf("unexpected series boundaries: %+v", result.Appointments)
	}
	if len(st.Appointments()) != 5 {
		t.Fatalf("store must hold the whole series")
	}
}

func TestCommitConflictReopensAtService(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, st := testCommitter(t, clk)

	st.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:30", End: "11:30", StaffID: "s1", ServiceID: "svc2",
	})

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})
	s.Draft = s.Draft.
		WithStaff("s1").
		WithDate("2024-03-10").
		WithTime("10:00").
		WithService("svc1").
		WithClient("c1", "Alice", "")

	result, err := c.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if result.Committed() {
		t.Fatalf("expected conflict result")
	}
	if result.Conflict.Reason != booking.ReasonOverlap {
		t.Fatalf("expected overlap reason, got %s", result.Conflict.Reason)
	}
	if s.Step() != StepService {
		t.Fatalf("conflict must reopen at service step, got %s", s.Step())
	}
	if len(st.Appointments()) != 1 {
		t.Fatalf("conflicting commit must not create appointments")
	}
	if s.Draft.ClientName != "Alice" {
		t.Fatalf("draft must survive a conflict")
	}
}

func TestCommitOutsideBookingWindow(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, _ := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})
	s.Draft = s.Draft.
		WithStaff("s1").
		WithDate("2024-03-10").
		WithTime("16:00").
		WithService("svc2"). // latest booking time 14:00
		WithClient("c1", "Alice", "")

	_, err := c.Commit(context.Background(), s)
	if !errors.Is(err, ErrOutsideBookingWindow) {
		t.Fatalf("expected ErrOutsideBookingWindow, got %v", err)
	}
}

func TestCommitDefaultStaff(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, _ := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeBooking, Draft{})
	s.Draft = s.Draft.
		WithDate("2024-03-10").
		WithTime("10:00").
		WithService("svc1").
		WithClient("c1", "Alice", "")

	result, err := c.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if len(result.Appointments) != 1 || result.Appointments[0].StaffID != "s1" {
		t.Fatalf("expected default staff s1, got %+v", result.Appointments)
	}
}

func TestCommitWaitlist(t *testing.T) {
	clk := testClock(t, "2024-03-01", "08:00")
	c, st := testCommitter(t, clk)

	m := NewManager(time.Hour)
	s := m.Create(ModeWaitlist, Draft{})
	s.Draft = s.Draft.
		WithDate("2024-03-10").
		WithService("svc1").
		WithClient("c1", "Alice", "")

	result, err := c.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if result.Waitlist == nil {
		t.Fatalf("expected waitlist entry")
	}
	if result.Waitlist.Status != booking.WaitlistWaiting {
		t.Fatalf("expected waiting status, got %s", result.Waitlist.Status)
	}
	if result.Waitlist.Time != booking.TimeAny {
		t.Fatalf("expected any-time default, got %s", result.Waitlist.Time)
	}
	if len(st.Waitlist(booking.WaitlistWaiting)) != 1 {
		t.Fatalf("store must hold the waitlist entry")
	}
	if len(st.Appointments()) != 0 {
		t.Fatalf("waitlist commit must not create appointments")
	}
}
