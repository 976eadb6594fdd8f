package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/clock"
	"salonbook/internal/persist"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(persist.NewNoop(), logger, time.UTC)
}

func testClock(t *testing.T, date, clockStr string) clock.Fixed {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", date+" "+clockStr)
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	return clock.Fixed{T: parsed}
}

func TestCreateMintsID(t *testing.T) {
	s := newTestStore(t)
	created, ok := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1",
	})
	if !ok {
		t.Fatalf("expected creation")
	}
	if created.ID == "" {
		t.Fatalf("expected minted id")
	}
	if created.Status != booking.StatusScheduled {
		t.Fatalf("expected default status scheduled, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}
}

func TestCreateDuplicateSkipped(t *testing.T) {
	s := newTestStore(t)
	a := booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00",
		StaffID: "s1", ClientID: "c1", ServiceID: "svc1",
	}
	first, ok := s.Create(context.Background(), a)
	if !ok {
		t.Fatalf("expected first creation")
	}

	second, ok := s.Create(context.Background(), a)
	if ok {
		t.Fatalf("duplicate must be skipped")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate must return the existing appointment")
	}
	if s.DuplicatesSkipped() != 1 {
		t.Fatalf("expected 1 duplicate counted, got %d", s.DuplicatesSkipped())
	}
	if len(s.Appointments()) != 1 {
		t.Fatalf("expected a single stored appointment")
	}
}

func TestCreateBatchAtomicOnConflict(t *testing.T) {
	s := newTestStore(t)
	clk := testClock(t, "2024-03-01", "08:00")

	s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-17", Start: "10:30", End: "11:30", StaffID: "s1", ServiceID: "svc1",
	})

	candidates := []booking.Appointment{
		{Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1"},
		{Date: "2024-03-17", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1"},
	}

	created, err := s.CreateBatch(context.Background(), candidates, true, clk)
	if err == nil {
		t.Fatalf("expected batch conflict")
	}
	var bc *BatchConflictError
	if !errors.As(err, &bc) {
		t.Fatalf("expected BatchConflictError, got %v", err)
	}
	if bc.Result.Date != "2024-03-17" {
		t.Fatalf("expected conflict on 2024-03-17, got %s", bc.Result.Date)
	}
	if created != nil {
		t.Fatalf("conflicting batch must create nothing")
	}
	if len(s.Appointments()) != 1 {
		t.Fatalf("store must be untouched after aborted batch, got %d", len(s.Appointments()))
	}
}

func TestCreateBatchClean(t *testing.T) {
	s := newTestStore(t)
	clk := testClock(t, "2024-03-01", "08:00")

	candidates := []booking.Appointment{
		{Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1"},
		{Date: "2024-03-17", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1"},
	}

	created, err := s.CreateBatch(context.Background(), candidates, true, clk)
	if err != nil {
		t.Fatalf("CreateBatch error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created, got %d", len(created))
	}
	for _, c := range created {
		if c.ID == "" {
			t.Fatalf("expected minted ids")
		}
	}
}

func TestMovePreservesDuration(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "10:45", StaffID: "s1", ServiceID: "svc1",
	})

	moved, conflict, err := s.Move(context.Background(), created.ID, "2024-03-12", "s2", "14:00")
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if moved.Date != "2024-03-12" || moved.StaffID != "s2" || moved.Start != "14:00" {
		t.Fatalf("unexpected moved fields: %+v", moved)
	}
	if moved.End != "14:45" {
		t.Fatalf("duration must be preserved, expected end 14:45, got %s", moved.End)
	}
	if moved.ServiceID != "svc1" {
		t.Fatalf("identity fields must not change")
	}
}

func TestMoveRejectsOverlap(t *testing.T) {
	s := newTestStore(t)
	blocker, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-12", Start: "14:00", End: "15:00", StaffID: "s2", ServiceID: "svc1",
	})
	created, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1",
	})

	_, conflict, err := s.Move(context.Background(), created.ID, "2024-03-12", "s2", "14:30")
	if err == nil {
		t.Fatalf("expected overlap error")
	}
	if conflict == nil || conflict.Appointment == nil || conflict.Appointment.ID != blocker.ID {
		t.Fatalf("expected conflict with blocker, got %+v", conflict)
	}

	// The appointment did not move.
	unchanged, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if unchanged.Date != "2024-03-10" || unchanged.Start != "10:00" {
		t.Fatalf("failed move must leave the appointment in place, got %+v", unchanged)
	}
}

func TestMoveBackToBackAllowed(t *testing.T) {
	s := newTestStore(t)
	s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-12", Start: "14:00", End: "15:00", StaffID: "s2", ServiceID: "svc1",
	})
	created, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1",
	})

	moved, conflict, err := s.Move(context.Background(), created.ID, "2024-03-12", "s2", "15:00")
	if err != nil || conflict != nil {
		t.Fatalf("back-to-back move must succeed: err=%v conflict=%+v", err, conflict)
	}
	if moved.Start != "15:00" || moved.End != "16:00" {
		t.Fatalf("unexpected window: %+v", moved)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1",
	})

	status := booking.StatusCanceled
	updated, err := s.Update(context.Background(), created.ID, UpdatePatch{Status: &status})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != booking.StatusCanceled {
		t.Fatalf("expected canceled, got %s", updated.Status)
	}

	if _, err := s.Update(context.Background(), "missing", UpdatePatch{Status: &status}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	bogus := booking.Status("archived")
	if _, err := s.Update(context.Background(), created.ID, UpdatePatch{Status: &bogus}); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.Create(context.Background(), booking.Appointment{
		Date: "2024-03-10", Start: "10:00", End: "11:00", StaffID: "s1", ServiceID: "svc1",
	})

	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(context.Background(), created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestWaitlistLifecycle(t *testing.T) {
	s := newTestStore(t)
	entry := s.AddWaitlist(context.Background(), booking.WaitlistEntry{
		ClientName: "Alice", ServiceID: "svc1", ServiceName: "Cut",
	})
	if entry.ID == "" {
		t.Fatalf("expected minted id")
	}
	if entry.Status != booking.WaitlistWaiting {
		t.Fatalf("expected default waiting status, got %s", entry.Status)
	}
	if entry.Time != booking.TimeAny {
		t.Fatalf("expected any-time default, got %s", entry.Time)
	}

	waiting := s.Waitlist(booking.WaitlistWaiting)
	if len(waiting) != 1 {
		t.Fatalf("expected 1 waiting entry, got %d", len(waiting))
	}

	fetched, err := s.WaitlistEntry(entry.ID)
	if err != nil {
		t.Fatalf("WaitlistEntry error: %v", err)
	}
	if fetched.ClientName != "Alice" {
		t.Fatalf("unexpected entry: %+v", fetched)
	}

	marked, err := s.MarkWaitlist(context.Background(), entry.ID, booking.WaitlistConverted)
	if err != nil {
		t.Fatalf("MarkWaitlist error: %v", err)
	}
	if marked.Status != booking.WaitlistConverted {
		t.Fatalf("expected converted, got %s", marked.Status)
	}
	if len(s.Waitlist(booking.WaitlistWaiting)) != 0 {
		t.Fatalf("converted entry must leave the waiting set")
	}
}
