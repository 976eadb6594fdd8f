package clock

import (
	"time"

	"salonbook/internal/schedule"
)

// Clock is the single source of "now" for everything that filters on elapsed
// time. Conflict checks take it as a dependency so the moving future-relevance
// window stays deterministic under test.
type Clock interface {
	Now() time.Time
	Today() string
	CurrentClock() string
}

type RealClock struct {
	Loc *time.Location
}

func New(loc *time.Location) RealClock {
	return RealClock{Loc: loc}
}

func (c RealClock) Now() time.Time {
	return time.Now().In(c.Loc)
}

func (c RealClock) Today() string {
	return schedule.FormatDateLocal(c.Now())
}

func (c RealClock) CurrentClock() string {
	return c.Now().Format(schedule.ClockLayout)
}

// Fixed pins the clock for tests.
type Fixed struct {
	T time.Time
}

func (c Fixed) Now() time.Time { return c.T }

func (c Fixed) Today() string { return schedule.FormatDateLocal(c.T) }

func (c Fixed) CurrentClock() string { return c.T.Format(schedule.ClockLayout) }
