package handlers

import (
	"testing"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

func TestPayloadToSettingsRoundTrip(t *testing.T) {
	req := settingsPayload{
		Hours: map[string]dayHoursPayload{
			"monday": {Open: true, Start: "09:00", End: "18:00"},
			"sunday": {Open: false},
		},
		SlotGranularityMinutes: 30,
		MinLeadTimeMinutes:     60,
		BlockedDates:           []string{"2024-12-25"},
		WhatsAppPhone:          "+5511999990000",
	}

	settings, errMsg := payloadToSettings(req)
	if errMsg != "" {
		t.Fatalf("payloadToSettings failed: %s", errMsg)
	}
	monday := settings.Hours[schedule.Monday]
	if !monday.Open || monday.Start != 9*60 || monday.End != 18*60 {
		t.Fatalf("unexpected monday hours: %+v", monday)
	}
	if settings.Hours[schedule.Sunday].Open {
		t.Fatal("sunday should be closed")
	}
	if len(settings.BlockedDates) != 1 || settings.BlockedDates[0].String() != "2024-12-25" {
		t.Fatalf("unexpected blocked dates: %v", settings.BlockedDates)
	}

	back := settingsToPayload(settings)
	if back.Hours["monday"].Start != "09:00" || back.Hours["monday"].End != "18:00" {
		t.Fatalf("round trip lost monday hours: %+v", back.Hours["monday"])
	}
	if back.WhatsAppPhone != req.WhatsAppPhone {
		t.Fatalf("round trip lost phone: %s", back.WhatsAppPhone)
	}
}

func TestPayloadToSettingsRejections(t *testing.T) {
	base := settingsPayload{SlotGranularityMinutes: 30}

	cases := []struct {
		name   string
		mutate func(*settingsPayload)
		want   string
	}{
		{"zero granularity", func(p *settingsPayload) { p.SlotGranularityMinutes = 0 }, "slot_granularity_minutes must be positive"},
		{"negative lead", func(p *settingsPayload) { p.MinLeadTimeMinutes = -1 }, "min_lead_time_minutes must not be negative"},
		{"unknown weekday", func(p *settingsPayload) {
			p.Hours = map[string]dayHoursPayload{"funday": {Open: true, Start: "09:00", End: "10:00"}}
		}, "unknown weekday funday"},
		{"inverted window", func(p *settingsPayload) {
			p.Hours = map[string]dayHoursPayload{"monday": {Open: true, Start: "18:00", End: "09:00"}}
		}, "end must be after start for monday"},
		{"bad blocked date", func(p *settingsPayload) { p.BlockedDates = []string{"25/12/2024"} }, "invalid blocked date 25/12/2024"},
	}
	for _, tc := range cases {
		req := base
		tc.mutate(&req)
		if _, errMsg := payloadToSettings(req); errMsg != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, errMsg, tc.want)
		}
	}
}
