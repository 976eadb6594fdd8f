package flow

import "salonbook/internal/booking"

// Draft accumulates the wizard's selections. It is a plain value updated
// through pure With* reducers, discarded on cancel or after a successful
// commit, and never persisted.
type Draft struct {
	StaffID     string                    `json:"staffId,omitempty"`
	Date        string                    `json:"date,omitempty"`
	Time        string                    `json:"time,omitempty"`
	ServiceID   string                    `json:"serviceId,omitempty"`
	ClientID    string                    `json:"clientId,omitempty"`
	ClientName  string                    `json:"clientName,omitempty"`
	ClientEmail string                    `json:"clientEmail,omitempty"`
	Recurrence  booking.RecurrencePattern `json:"recurrence"`
	Span        booking.DurationSpec      `json:"span"`
}

func (d Draft) WithStaff(staffID string) Draft {
	d.StaffID = staffID
	return d
}

func (d Draft) WithDate(date string) Draft {
	d.Date = date
	return d
}

func (d Draft) WithTime(clock string) Draft {
	d.Time = clock
	return d
}

func (d Draft) WithService(serviceID string) Draft {
	d.ServiceID = serviceID
	return d
}

func (d Draft) WithClient(clientID, clientName, clientEmail string) Draft {
	d.ClientID = clientID
	d.ClientName = clientName
	d.ClientEmail = clientEmail
	return d
}

func (d Draft) WithRecurrence(p booking.RecurrencePattern, span booking.DurationSpec) Draft {
	d.Recurrence = p
	d.Span = span
	return d
}

func (d Draft) hasClient() bool {
	return d.ClientID != "" || d.ClientName != ""
}
