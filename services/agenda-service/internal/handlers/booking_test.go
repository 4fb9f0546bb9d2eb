package handlers

import (
	"testing"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

func testSettings() model.Settings {
	hours := schedule.OperatingHours{}
	for w := schedule.Monday; w <= schedule.Saturday; w++ {
		hours[w] = schedule.DayHours{Open: true, Start: 9 * 60, End: 18 * 60}
	}
	return model.Settings{
		Hours:                  hours,
		SlotGranularityMinutes: 30,
		MinLeadTimeMinutes:     60,
	}
}

func TestCheckSlotRequest(t *testing.T) {
	settings := testSettings()
	monday := schedule.Date{Year: 2024, Month: 6, Day: 10}
	sunday := schedule.Date{Year: 2024, Month: 6, Day: 9}
	current := schedule.Now{Date: monday, Time: 9 * 60}

	cases := []struct {
		name        string
		date        schedule.Date
		start       schedule.TimeOfDay
		duration    int
		enforceLead bool
		want        string
	}{
		{"valid", monday, 10 * 60, 30, true, ""},
		{"lead boundary ok", monday, 10 * 60, 30, true, ""},
		{"inside lead window", monday, 9*60 + 30, 30, true, "insufficient lead time"},
		{"lead waived for admin", monday, 9*60 + 30, 30, false, ""},
		{"closed day", sunday, 10 * 60, 30, true, "closed on this day"},
		{"before opening", monday, 8 * 60, 30, true, "outside operating hours"},
		{"runs past closing", monday, 17*60 + 30, 45, true, "outside operating hours"},
		{"misaligned", monday, 10*60 + 15, 30, true, "time not aligned to slot grid"},
	}
	for _, tc := range cases {
		got := checkSlotRequest(tc.date, tc.start, tc.duration, settings, current, tc.enforceLead)
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCheckSlotRequestBlockedAndPast(t *testing.T) {
	settings := testSettings()
	monday := schedule.Date{Year: 2024, Month: 6, Day: 10}
	settings.BlockedDates = []schedule.Date{monday}
	current := schedule.Now{Date: schedule.Date{Year: 2024, Month: 6, Day: 11}, Time: 0}

	if got := checkSlotRequest(monday, 10*60, 30, settings, current, true); got != "date is blocked" {
		t.Errorf("blocked date: got %q", got)
	}

	settings.BlockedDates = nil
	if got := checkSlotRequest(monday, 10*60, 30, settings, current, true); got != "date is in the past" {
		t.Errorf("past date: got %q", got)
	}
}

func TestCheckSlotRequestMisconfigured(t *testing.T) {
	settings := testSettings()
	settings.SlotGranularityMinutes = 0
	monday := schedule.Date{Year: 2024, Month: 6, Day: 10}
	current := schedule.Now{Date: monday, Time: 8 * 60}

	if got := checkSlotRequest(monday, 10*60, 30, settings, current, true); got != "scheduling misconfigured" {
		t.Errorf("got %q", got)
	}
}
