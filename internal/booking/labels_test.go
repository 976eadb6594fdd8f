package booking

import "testing"

func TestParseRecurrenceLabel(t *testing.T) {
	cases := []struct {
		label  string
		unit   RecurrenceUnit
		amount int
	}{
		{"Every 3 Days", UnitDay, 3},
		{"Every Week", UnitWeek, 1},
		{"Every 2 Weeks", UnitWeek, 2},
		{"Every Month", UnitMonth, 1},
		{"every month", UnitMonth, 1},
	}

	for _, tc := range cases {
		p, err := ParseRecurrenceLabel(tc.label)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.label, err)
		}
		if p.Unit != tc.unit || p.Amount != tc.amount {
			t.Fatalf("%q: expected %s/%d, got %s/%d", tc.label, tc.unit, tc.amount, p.Unit, p.Amount)
		}
	}
}

func TestParseRecurrenceLabelNone(t *testing.T) {
	p, err := ParseRecurrenceLabel("Regular Appointment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.None() {
		t.Fatalf("expected no recurrence, got %+v", p)
	}

	p, err = ParseRecurrenceLabel("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.None() {
		t.Fatalf("empty label must mean no recurrence")
	}
}

func TestParseRecurrenceLabelUnknown(t *testing.T) {
	if _, err := ParseRecurrenceLabel("Twice a fortnight"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
	if _, err := ParseRecurrenceLabel("Every 0 Days"); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestParseSpanLabel(t *testing.T) {
	cases := []struct {
		label  string
		unit   SpanUnit
		amount float64
	}{
		{"1 Month", SpanMonth, 1},
		{"3 Months", SpanMonth, 3},
		{"2 Weeks", SpanWeek, 2},
		{"1 Year", SpanYear, 1},
		{"1.5 Years", SpanYear, 1.5},
	}

	for _, tc := range cases {
		d, err := ParseSpanLabel(tc.label)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.label, err)
		}
		if d.Unit != tc.unit || d.Amount != tc.amount {
			t.Fatalf("%q: expected %s/%v, got %s/%v", tc.label, tc.unit, tc.amount, d.Unit, d.Amount)
		}
	}

	if _, err := ParseSpanLabel("forever"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}
