package directory

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestWorksOn(t *testing.T) {
	staff := Staff{
		Status: StaffStatusActive,
		WorkingHours: map[string]WorkingDay{
			"mon": {Active: true, StartTime: "09:00", EndTime: "18:00"},
			"tue": {Active: false},
		},
	}

	if !staff.WorksOn("mon") {
		t.Fatalf("expected mon to be a working day")
	}
	if staff.WorksOn("tue") {
		t.Fatalf("inactive window must not count as working")
	}
	if staff.WorksOn("sun") {
		t.Fatalf("missing weekday must not count as working")
	}

	staff.Status = StaffStatusOffline
	if staff.WorksOn("mon") {
		t.Fatalf("offline staff works no day at all")
	}
}

func TestAvailableOnNilVersusEmpty(t *testing.T) {
	unrestricted := Service{}
	if !unrestricted.AvailableOn("mon") {
		t.Fatalf("nil available-days must mean all days allowed")
	}

	closed := Service{AvailableDays: []string{}}
	if closed.AvailableOn("mon") {
		t.Fatalf("empty available-days must mean no days allowed")
	}

	restricted := Service{AvailableDays: []string{"tue", "wed"}}
	if !restricted.AvailableOn("tue") || restricted.AvailableOn("mon") {
		t.Fatalf("restricted set must allow only its listed days")
	}
}

func TestServiceAvailableDaysSurviveEncoding(t *testing.T) {
	// "No days allowed" must not decode back as "all days allowed".
	closed := Service{ID: "svc1", Name: "Cut", Duration: 30, AvailableDays: []string{}}

	raw, err := bson.Marshal(closed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Service
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.AvailableDays == nil {
		t.Fatalf("explicitly empty available-days became nil after round-trip")
	}
	if decoded.AvailableOn("mon") {
		t.Fatalf("round-tripped service must still allow no days")
	}
}
