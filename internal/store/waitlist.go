package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salonbook/internal/booking"
	"salonbook/internal/persist"
)

// AddWaitlist appends an entry. Waitlist entries hold no committed time slot,
// so the overlap invariant does not apply to them.
func (s *Store) AddWaitlist(ctx context.Context, e booking.WaitlistEntry) booking.WaitlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	if e.Status == "" {
		e.Status = booking.WaitlistWaiting
	}
	if e.Time == "" {
		e.Time = booking.TimeAny
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().In(s.loc)
	}
	s.waitlist = append(s.waitlist, e)
	s.persistWaitlistLocked(ctx)
	return e
}

func (s *Store) Waitlist(status booking.WaitlistStatus) []booking.WaitlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.WaitlistEntry, 0)
	for _, e := range s.waitlist {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) WaitlistEntry(id string) (booking.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.waitlist {
		if e.ID == id {
			return e, nil
		}
	}
	return booking.WaitlistEntry{}, ErrNotFound
}

// MarkWaitlist transitions an entry to converted or removed. Converted
// entries are expected to have a matching appointment created by the caller.
func (s *Store) MarkWaitlist(ctx context.Context, id string, status booking.WaitlistStatus) (booking.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.waitlist {
		if s.waitlist[i].ID == id {
			s.waitlist[i].Status = status
			s.persistWaitlistLocked(ctx)
			return s.waitlist[i], nil
		}
	}
	return booking.WaitlistEntry{}, ErrNotFound
}

func (s *Store) persistWaitlistLocked(ctx context.Context) {
	payload, err := json.Marshal(s.waitlist)
	if err != nil {
		s.log.Warn("store persist: waitlist encode failed", slog.String("error", err.Error()))
		return
	}
	if err := s.persist.Save(ctx, persist.KeyWaitlist, payload); err != nil {
		s.log.Warn("store persist: waitlist save failed", slog.String("error", err.Error()))
	}
}
