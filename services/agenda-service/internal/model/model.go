package model

import (
	"time"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

// Reservation is a committed agenda entry: either a client booking or an
// administrative block. Identity in the store is (Day, Start).
type Reservation struct {
	ID              string
	Day             schedule.Date
	Start           schedule.TimeOfDay
	DurationMinutes int
	Kind            schedule.Kind
	ClientName      string
	ClientPhone     string
	ServiceName     string
	ServicePrice    float64
	CreatedAt       time.Time
}

// Slot converts the row into the engine's view of it.
func (r Reservation) Slot() schedule.Reservation {
	return schedule.Reservation{
		Start:           r.Start,
		DurationMinutes: r.DurationMinutes,
		Kind:            r.Kind,
	}
}

type Service struct {
	ID              string
	Name            string
	Price           float64
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
}

// Client is the shop's customer record, keyed by phone number. ClipperSize
// and Notes are the barber's own shorthand for the client's usual cut.
type Client struct {
	Phone       string
	Name        string
	ClipperSize string
	Notes       string
	LastTopic   string
	UpdatedAt   time.Time
}

// Settings is the single-row configuration aggregate: the weekly hours plus
// the scheduling policy and the shop's WhatsApp contact number.
type Settings struct {
	Hours                  schedule.OperatingHours
	SlotGranularityMinutes int
	MinLeadTimeMinutes     int
	BlockedDates           []schedule.Date
	WhatsAppPhone          string
	UpdatedAt              time.Time
}

// Policy materializes the scheduling policy for the engine.
func (s Settings) Policy() schedule.Policy {
	blocked := make(map[schedule.Date]struct{}, len(s.BlockedDates))
	for _, d := range s.BlockedDates {
		blocked[d] = struct{}{}
	}
	return schedule.Policy{
		SlotGranularityMinutes: s.SlotGranularityMinutes,
		MinLeadTimeMinutes:     s.MinLeadTimeMinutes,
		BlockedDates:           blocked,
	}
}

type AdminUser struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
