package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

type SettingsRepository struct {
	pool *db.Pool
}

func NewSettingsRepository(pool *db.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// dayHoursJSON is the persisted shape of one weekday's window, keyed by
// lowercase weekday name in the operating_hours jsonb column.
type dayHoursJSON struct {
	Open  bool   `json:"open"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r *SettingsRepository) Get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	var blocked []time.Time
	var hoursRaw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT slot_granularity_minutes, min_lead_time_minutes, whatsapp_phone,
			blocked_dates, operating_hours, updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&s.SlotGranularityMinutes, &s.MinLeadTimeMinutes, &s.WhatsAppPhone, &blocked, &hoursRaw, &s.UpdatedAt)
	if err != nil {
		return model.Settings{}, err
	}

	s.Hours, err = hoursFromJSON(hoursRaw)
	if err != nil {
		return model.Settings{}, err
	}
	for _, t := range blocked {
		s.BlockedDates = append(s.BlockedDates, dateFromTime(t))
	}
	return s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s model.Settings) error {
	hoursRaw, err := hoursToJSON(s.Hours)
	if err != nil {
		return err
	}
	blocked := make([]string, 0, len(s.BlockedDates))
	for _, d := range s.BlockedDates {
		blocked = append(blocked, d.String())
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE settings
		SET slot_granularity_minutes = $1,
			min_lead_time_minutes = $2,
			whatsapp_phone = $3,
			blocked_dates = $4::date[],
			operating_hours = $5,
			updated_at = now()
		WHERE id = 1
	`, s.SlotGranularityMinutes, s.MinLeadTimeMinutes, s.WhatsAppPhone, blocked, hoursRaw)
	return err
}

// AddBlockedDate closes a whole day for booking. Adding an already blocked
// date is a no-op.
func (r *SettingsRepository) AddBlockedDate(ctx context.Context, d schedule.Date) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE settings
		SET blocked_dates = (
				SELECT COALESCE(array_agg(DISTINCT b ORDER BY b), '{}')
				FROM unnest(array_append(blocked_dates, $1::date)) AS b
			),
			updated_at = now()
		WHERE id = 1
	`, d.String())
	return err
}

func (r *SettingsRepository) RemoveBlockedDate(ctx context.Context, d schedule.Date) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE settings
		SET blocked_dates = array_remove(blocked_dates, $1::date),
			updated_at = now()
		WHERE id = 1
	`, d.String())
	return err
}

func hoursFromJSON(raw []byte) (schedule.OperatingHours, error) {
	if len(raw) == 0 {
		return schedule.OperatingHours{}, nil
	}
	var wire map[string]dayHoursJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode operating hours: %w", err)
	}

	hours := schedule.OperatingHours{}
	for name, dh := range wire {
		wd, ok := schedule.ParseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("decode operating hours: unknown weekday %q", name)
		}
		if !dh.Open {
			hours[wd] = schedule.DayHours{}
			continue
		}
		start, err := schedule.ParseClock(dh.Start)
		if err != nil {
			return nil, fmt.Errorf("decode operating hours for %s: %w", name, err)
		}
		end, err := schedule.ParseClock(dh.End)
		if err != nil {
			return nil, fmt.Errorf("decode operating hours for %s: %w", name, err)
		}
		hours[wd] = schedule.DayHours{Open: true, Start: start, End: end}
	}
	return hours, nil
}

func hoursToJSON(hours schedule.OperatingHours) ([]byte, error) {
	wire := make(map[string]dayHoursJSON, len(hours))
	for wd, dh := range hours {
		entry := dayHoursJSON{Open: dh.Open}
		if dh.Open {
			entry.Start = dh.Start.String()
			entry.End = dh.End.String()
		}
		wire[wd.String()] = entry
	}
	return json.Marshal(wire)
}
