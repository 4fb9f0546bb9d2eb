package storage

import (
	"testing"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

func TestOperatingHoursJSONRoundTrip(t *testing.T) {
	hours := schedule.OperatingHours{
		schedule.Monday:   {Open: true, Start: 9 * 60, End: 18 * 60},
		schedule.Saturday: {Open: true, Start: 8 * 60, End: 13 * 60},
		schedule.Sunday:   {},
	}

	raw, err := hoursToJSON(hours)
	if err != nil {
		t.Fatalf("hoursToJSON failed: %v", err)
	}
	back, err := hoursFromJSON(raw)
	if err != nil {
		t.Fatalf("hoursFromJSON failed: %v", err)
	}
	if len(back) != len(hours) {
		t.Fatalf("got %d entries, want %d", len(back), len(hours))
	}
	for wd, want := range hours {
		if back[wd] != want {
			t.Errorf("%s: got %+v, want %+v", wd, back[wd], want)
		}
	}
}

func TestHoursFromJSONRejectsUnknownWeekday(t *testing.T) {
	if _, err := hoursFromJSON([]byte(`{"funday":{"open":true,"start":"09:00","end":"10:00"}}`)); err == nil {
		t.Fatal("expected unknown weekday error")
	}
}

func TestHoursFromJSONEmpty(t *testing.T) {
	hours, err := hoursFromJSON(nil)
	if err != nil {
		t.Fatalf("hoursFromJSON(nil) failed: %v", err)
	}
	if len(hours) != 0 {
		t.Fatalf("expected empty hours, got %v", hours)
	}
}
