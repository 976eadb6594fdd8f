package flow

import (
	"errors"
	"time"
)

type Step string

const (
	StepStaff   Step = "staff"
	StepDate    Step = "date"
	StepTime    Step = "time"
	StepService Step = "service"
	StepClient  Step = "client"
)

type Mode string

const (
	ModeBooking  Mode = "booking"
	ModeWaitlist Mode = "waitlist"
)

var (
	bookingSteps  = []Step{StepStaff, StepDate, StepTime, StepService, StepClient}
	waitlistSteps = []Step{StepDate, StepTime, StepService, StepClient}
)

var ErrUnknownStep = errors.New("unknown step")

// Session is one wizard run. Steps are freely navigable; nothing enforces
// that earlier steps are complete before jumping forward, because validation
// happens only at commit time.
type Session struct {
	ID         string        `json:"id"`
	Mode       Mode          `json:"mode"`
	Steps      []Step        `json:"steps"`
	Current    int           `json:"current"`
	Prefilled  map[Step]bool `json:"prefilled,omitempty"`
	Draft      Draft         `json:"draft"`
	CreatedAt  time.Time     `json:"createdAt"`
	LastActive time.Time     `json:"-"`
}

func newSession(id string, mode Mode, pre Draft, now time.Time) *Session {
	steps := bookingSteps
	if mode == ModeWaitlist {
		steps = waitlistSteps
	}

	s := &Session{
		ID:         id,
		Mode:       mode,
		Steps:      steps,
		Prefilled:  make(map[Step]bool),
		Draft:      pre,
		CreatedAt:  now,
		LastActive: now,
	}

	if pre.StaffID != "" {
		s.Prefilled[StepStaff] = true
	}
	if pre.Date != "" {
		s.Prefilled[StepDate] = true
	}
	if pre.Time != "" {
		s.Prefilled[StepTime] = true
	}

	// Clicking a concrete staff/day/slot in the grid pre-supplies the first
	// three steps; the wizard then opens directly at the service step.
	if mode == ModeBooking && pre.StaffID != "" && pre.Date != "" && pre.Time != "" {
		s.Current = s.indexOf(StepService)
	}

	return s
}

func (s *Session) Step() Step {
	return s.Steps[s.Current]
}

func (s *Session) indexOf(step Step) int {
	for i, st := range s.Steps {
		if st == step {
			return i
		}
	}
	return -1
}

func (s *Session) Next() {
	if s.Current < len(s.Steps)-1 {
		s.Current++
	}
}

func (s *Session) Prev() {
	if s.Current > 0 {
		s.Current--
	}
}

// GoTo jumps to any step in the sequence; the breadcrumbs are independently
// clickable.
func (s *Session) GoTo(step Step) error {
	idx := s.indexOf(step)
	if idx < 0 {
		return ErrUnknownStep
	}
	s.Current = idx
	return nil
}

// Reset clears the draft and every step-local selection. Closing without
// committing is equivalent.
func (s *Session) Reset() {
	s.Draft = Draft{}
	s.Prefilled = make(map[Step]bool)
	s.Current = 0
}
