package booking

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Human labels from the booking widget. They are translated to typed
// values here, at the edge; nothing below this file touches label text.
const LabelNoRecurrence = "Regular Appointment"

var (
	ErrUnknownRecurrenceLabel = errors.New("unknown recurrence label")
	ErrUnknownSpanLabel       = errors.New("unknown duration label")
)

var (
	recurrenceLabelRe = regexp.MustCompile(`(?i)^every(?:\s+(\d+))?\s+(day|week|month)s?$`)
	spanLabelRe       = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s+(week|month|year)s?$`)
)

// ParseRecurrenceLabel maps labels like "Every 3 Days", "Every Week" or
// "Every Month" to a RecurrencePattern. "Regular Appointment" (and an
// empty label) mean no recurrence.
func ParseRecurrenceLabel(label string) (RecurrencePattern, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, LabelNoRecurrence) {
		return RecurrencePattern{}, nil
	}

	m := recurrenceLabelRe.FindStringSubmatch(label)
	if m == nil {
		return RecurrencePattern{}, ErrUnknownRecurrenceLabel
	}

	amount := 1
	if m[1] != "" {
		parsed, err := strconv.Atoi(m[1])
		if err != nil || parsed < 1 {
			return RecurrencePattern{}, ErrUnknownRecurrenceLabel
		}
		amount = parsed
	}

	return RecurrencePattern{
		Unit:   RecurrenceUnit(strings.ToLower(m[2])),
		Amount: amount,
	}, nil
}

// ParseSpanLabel maps labels like "2 Weeks", "1 Month" or "1 Year" to a
// DurationSpec.
func ParseSpanLabel(label string) (DurationSpec, error) {
	m := spanLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return DurationSpec{}, ErrUnknownSpanLabel
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || amount <= 0 {
		return DurationSpec{}, ErrUnknownSpanLabel
	}

	return DurationSpec{
		Amount: amount,
		Unit:   SpanUnit(strings.ToLower(m[2])),
	}, nil
}
