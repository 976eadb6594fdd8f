package directory

import "time"

const (
	StaffStatusActive  = "active"
	StaffStatusOffline = "offline"
)

type WorkingDay struct {
	Active    bool   `bson:"active" json:"active"`
	StartTime string `bson:"startTime" json:"startTime"`
	EndTime   string `bson:"endTime" json:"endTime"`
}

// Staff is a read-only external entity; the booking core consults it but
// does not own its lifecycle.
type Staff struct {
	ID           string                `bson:"_id,omitempty" json:"id"`
	Name         string                `bson:"name" json:"name"`
	Status       string                `bson:"status" json:"status"`
	WorkingHours map[string]WorkingDay `bson:"workingHours" json:"workingHours"`
	CreatedAt    time.Time             `bson:"createdAt" json:"createdAt"`
}

// WorksOn reports whether the staff member takes appointments on the given
// weekday key. An offline staff member works no day at all.
func (s Staff) WorksOn(dayKey string) bool {
	if s.Status == StaffStatusOffline {
		return false
	}
	wd, ok := s.WorkingHours[dayKey]
	if !ok {
		return false
	}
	return wd.Active
}

type Service struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	Name                string    `bson:"name" json:"name"`
	Duration            int       `bson:"duration" json:"duration"`
	Price               int       `bson:"price" json:"price"`
	AvailableDays       []string  `bson:"availableDays" json:"availableDays,omitempty"`
	EarliestBookingTime string    `bson:"earliestBookingTime,omitempty" json:"earliestBookingTime,omitempty"`
	LatestBookingTime   string    `bson:"latestBookingTime,omitempty" json:"latestBookingTime,omitempty"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
}

// AvailableOn distinguishes a nil set (all days allowed) from an explicitly
// empty one (no days allowed).
func (s Service) AvailableOn(dayKey string) bool {
	if s.AvailableDays == nil {
		return true
	}
	for _, d := range s.AvailableDays {
		if d == dayKey {
			return true
		}
	}
	return false
}
