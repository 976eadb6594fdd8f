package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salonbook/internal/booking"
	"salonbook/internal/clock"
	"salonbook/internal/persist"
	"salonbook/internal/schedule"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrOverlap       = errors.New("appointment overlap")
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// BatchConflictError forces callers of CreateBatch onto an explicit abort
// path instead of silently continuing past a conflict.
type BatchConflictError struct {
	Result *booking.ConflictResult
}

func (e *BatchConflictError) Error() string {
	return "batch conflict on " + e.Result.Date + ": " + string(e.Result.Reason)
}

// Store holds the authoritative in-memory appointment and waitlist sets.
// The in-memory state is the source of truth for the session; every mutation
// triggers a best-effort full-set write to the durable store, and a failed
// write degrades to session-only durability without rolling anything back.
type Store struct {
	mu       sync.Mutex
	appts    []booking.Appointment
	waitlist []booking.WaitlistEntry

	persist persist.Store
	log     *slog.Logger
	loc     *time.Location

	duplicatesSkipped int
}

func New(p persist.Store, log *slog.Logger, loc *time.Location) *Store {
	return &Store{
		appts:    make([]booking.Appointment, 0),
		waitlist: make([]booking.WaitlistEntry, 0),
		persist:  p,
		log:      log,
		loc:      loc,
	}
}

// Load replaces the in-memory sets from the durable store. Missing or
// corrupt snapshots start the session empty; they never fail startup.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payload, ok, err := s.persist.Load(ctx, persist.KeyAppointments); err != nil {
		s.log.Warn("store load: appointments read failed", slog.String("error", err.Error()))
	} else if ok {
		var items []booking.Appointment
		if err := json.Unmarshal(payload, &items); err != nil {
			s.log.Warn("store load: appointments corrupt, starting empty", slog.String("error", err.Error()))
		} else {
			s.appts = items
		}
	}

	if payload, ok, err := s.persist.Load(ctx, persist.KeyWaitlist); err != nil {
		s.log.Warn("store load: waitlist read failed", slog.String("error", err.Error()))
	} else if ok {
		var items []booking.WaitlistEntry
		if err := json.Unmarshal(payload, &items); err != nil {
			s.log.Warn("store load: waitlist corrupt, starting empty", slog.String("error", err.Error()))
		} else {
			s.waitlist = items
		}
	}
}

// Appointments returns a copy of the current set.
func (s *Store) Appointments() []booking.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []booking.Appointment {
	out := make([]booking.Appointment, len(s.appts))
	copy(out, s.appts)
	return out
}

func (s *Store) ByDate(date string) []booking.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.Appointment, 0)
	for _, a := range s.appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Get(id string) (booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appts {
		if a.ID == id {
			return a, nil
		}
	}
	return booking.Appointment{}, ErrNotFound
}

// DuplicatesSkipped reports how many exact duplicates the guard has dropped
// since startup. Benign and expected during series regeneration.
func (s *Store) DuplicatesSkipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duplicatesSkipped
}

// Create admits a single appointment, minting an id when absent. Exact
// duplicates (same date, start, staff, client and service) are silently
// skipped and counted; the existing appointment is returned.
func (s *Store) Create(ctx context.Context, a booking.Appointment) (booking.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.findDuplicateLocked(a); ok {
		s.duplicatesSkipped++
		s.log.Info("store create: duplicate skipped",
			slog.String("date", a.Date),
			slog.String("start", a.Start),
			slog.String("staff_id", a.StaffID),
		)
		return existing, false
	}

	created := s.insertLocked(a)
	s.persistAppointmentsLocked(ctx)
	return created, true
}

// CreateBatch pre-validates the entire batch before performing any mutation:
// a single conflict anywhere leaves the store untouched and returns a
// BatchConflictError. Candidates are processed in generation order, so the
// reported conflict is always the earliest-dated one.
func (s *Store) CreateBatch(ctx context.Context, candidates []booking.Appointment, checkConflicts bool, clk clock.Clock) ([]booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if checkConflicts {
		if res := booking.FindBatchConflicts(candidates, s.appts, clk); res != nil {
			return nil, &BatchConflictError{Result: res}
		}
	}

	created := make([]booking.Appointment, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := s.findDuplicateLocked(c); ok {
			s.duplicatesSkipped++
			continue
		}
		created = append(created, s.insertLocked(c))
	}

	if len(created) > 0 {
		s.persistAppointmentsLocked(ctx)
	}
	return created, nil
}

// UpdatePatch shallow-merges into an appointment. Update does not revalidate
// overlap; callers must have validated before calling it.
type UpdatePatch struct {
	Date        *string
	Start       *string
	End         *string
	StaffID     *string
	ClientID    *string
	ClientName  *string
	ServiceID   *string
	ServiceName *string
	Price       *int
	Status      *booking.Status
}

func (s *Store) Update(ctx context.Context, id string, patch UpdatePatch) (booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Status != nil && !booking.IsValidStatus(*patch.Status) {
		return booking.Appointment{}, ErrInvalidStatus
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return booking.Appointment{}, ErrNotFound
	}

	a := &s.appts[idx]
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.Start != nil {
		a.Start = *patch.Start
	}
	if patch.End != nil {
		a.End = *patch.End
	}
	if patch.StaffID != nil {
		a.StaffID = *patch.StaffID
	}
	if patch.ClientID != nil {
		a.ClientID = *patch.ClientID
	}
	if patch.ClientName != nil {
		a.ClientName = *patch.ClientName
	}
	if patch.ServiceID != nil {
		a.ServiceID = *patch.ServiceID
	}
	if patch.ServiceName != nil {
		a.ServiceName = *patch.ServiceName
	}
	if patch.Price != nil {
		a.Price = *patch.Price
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}

	s.persistAppointmentsLocked(ctx)
	return *a, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.appts = append(s.appts[:idx], s.appts[idx+1:]...)
	s.persistAppointmentsLocked(ctx)
	return nil
}

// Move relocates an appointment to a new date, staff and start time. The new
// window keeps the appointment's own duration, recomputed from its start and
// end. On overlap the store is untouched and the colliding appointment is
// reported; identity fields (client, service, price) are never changed.
func (s *Store) Move(ctx context.Context, id, date, staffID, start string) (booking.Appointment, *booking.ConflictResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return booking.Appointment{}, nil, ErrNotFound
	}
	moved := s.appts[idx]

	startMin, err := schedule.ParseClockToMinutes(moved.Start)
	if err != nil {
		return booking.Appointment{}, nil, err
	}
	endMin, err := schedule.ParseClockToMinutes(moved.End)
	if err != nil {
		return booking.Appointment{}, nil, err
	}
	duration := endMin - startMin

	end, err := schedule.CalculateEndTime(start, duration)
	if err != nil {
		return booking.Appointment{}, nil, err
	}

	if hit := booking.FindOverlap(s.appts, date, staffID, start, end, id); hit != nil {
		return booking.Appointment{}, &booking.ConflictResult{
			Reason:      booking.ReasonOverlap,
			Date:        date,
			Appointment: hit,
		}, ErrOverlap
	}

	a := &s.appts[idx]
	a.Date = date
	a.StaffID = staffID
	a.Start = start
	a.End = end

	s.persistAppointmentsLocked(ctx)
	return *a, nil, nil
}

func (s *Store) findDuplicateLocked(a booking.Appointment) (booking.Appointment, bool) {
	key := a.DuplicateKey()
	for _, existing := range s.appts {
		if existing.DuplicateKey() == key {
			return existing, true
		}
	}
	return booking.Appointment{}, false
}

func (s *Store) insertLocked(a booking.Appointment) booking.Appointment {
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	if a.Status == "" {
		a.Status = booking.StatusScheduled
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().In(s.loc)
	}
	s.appts = append(s.appts, a)
	return a
}

func (s *Store) indexOfLocked(id string) int {
	for i := range s.appts {
		if s.appts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistAppointmentsLocked(ctx context.Context) {
	payload, err := json.Marshal(s.appts)
	if err != nil {
		s.log.Warn("store persist: appointments encode failed", slog.String("error", err.Error()))
		return
	}
	if err := s.persist.Save(ctx, persist.KeyAppointments, payload); err != nil {
		s.log.Warn("store persist: appointments save failed", slog.String("error", err.Error()))
	}
}
