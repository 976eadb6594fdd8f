package booking

import "time"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusNoShow    Status = "no_show"
	StatusCanceled  Status = "canceled"
)

var validStatuses = map[Status]struct{}{
	StatusScheduled: {},
	StatusConfirmed: {},
	StatusPaid:      {},
	StatusNoShow:    {},
	StatusCanceled:  {},
}

func IsValidStatus(value Status) bool {
	_, ok := validStatuses[value]
	return ok
}

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistRemoved   WaitlistStatus = "removed"
)

// TimeAny is the sentinel time for waitlist entries with no preferred slot.
const TimeAny = "any"

type Appointment struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Date        string    `bson:"date" json:"date"`
	Start       string    `bson:"start" json:"start"`
	End         string    `bson:"end" json:"end"`
	StaffID     string    `bson:"staffId" json:"staffId"`
	ClientID    string    `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName  string    `bson:"clientName,omitempty" json:"clientName,omitempty"`
	ClientEmail string    `bson:"clientEmail,omitempty" json:"clientEmail,omitempty"`
	ServiceID   string    `bson:"serviceId" json:"serviceId"`
	ServiceName string    `bson:"serviceName" json:"serviceName"`
	Price       int       `bson:"price" json:"price"`
	Status      Status    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// DuplicateKey identifies an appointment for the exact-duplicate guard.
func (a Appointment) DuplicateKey() string {
	return a.Date + "|" + a.Start + "|" + a.StaffID + "|" + a.ClientID + "|" + a.ServiceID
}

type WaitlistEntry struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	ClientID    string         `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName  string         `bson:"clientName" json:"clientName"`
	ServiceID   string         `bson:"serviceId" json:"serviceId"`
	ServiceName string         `bson:"serviceName" json:"serviceName"`
	Date        string         `bson:"date,omitempty" json:"date,omitempty"`
	Time        string         `bson:"time" json:"time"`
	Status      WaitlistStatus `bson:"status" json:"status"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
}

type RecurrenceUnit string

const (
	UnitDay   RecurrenceUnit = "day"
	UnitWeek  RecurrenceUnit = "week"
	UnitMonth RecurrenceUnit = "month"
)

// RecurrencePattern is the repeat interval. The zero value means no
// recurrence (a single occurrence).
type RecurrencePattern struct {
	Unit   RecurrenceUnit `json:"unit"`
	Amount int            `json:"amount"`
}

func (p RecurrencePattern) None() bool {
	return p.Amount < 1 || p.Unit == ""
}

type SpanUnit string

const (
	SpanWeek  SpanUnit = "week"
	SpanMonth SpanUnit = "month"
	SpanYear  SpanUnit = "year"
)

// DurationSpec is the total span a pattern repeats over. It bounds the count
// of generated occurrences, not a calendar end date.
type DurationSpec struct {
	Amount float64  `json:"amount"`
	Unit   SpanUnit `json:"unit"`
}

type ConflictReason string

const (
	ReasonNonWorkingDay   ConflictReason = "non_working_day"
	ReasonStaffNotWorking ConflictReason = "staff_not_working"
	ReasonOverlap         ConflictReason = "appointment_overlap"
)

// ConflictResult is a first-class value, not an error: callers branch on it
// to decide commit versus reject.
type ConflictResult struct {
	Reason      ConflictReason `json:"reason"`
	Date        string         `json:"date"`
	Appointment *Appointment   `json:"appointment,omitempty"`
}
