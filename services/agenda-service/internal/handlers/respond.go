package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// now snapshots the wall clock in the shop's timezone as the engine's
// timezone-free current instant.
func now(loc *time.Location) schedule.Now {
	t := time.Now().In(loc)
	return schedule.Now{
		Date: schedule.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
		Time: schedule.TimeOfDay(t.Hour()*60 + t.Minute()),
	}
}

// slotInstant is the reservation's start as a wall-clock instant in the
// shop's timezone, used to anchor reminder offsets.
func slotInstant(day schedule.Date, start schedule.TimeOfDay, loc *time.Location) time.Time {
	return time.Date(day.Year, time.Month(day.Month), day.Day, start.Hour(), start.Minute(), 0, 0, loc)
}
