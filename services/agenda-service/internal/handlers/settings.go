package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

type SettingsHandler struct {
	settings *storage.SettingsRepository
	logger   *slog.Logger
}

func NewSettingsHandler(settings *storage.SettingsRepository, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

type dayHoursPayload struct {
	Open  bool   `json:"open"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type settingsPayload struct {
	Hours                  map[string]dayHoursPayload `json:"hours"`
	SlotGranularityMinutes int                        `json:"slot_granularity_minutes"`
	MinLeadTimeMinutes     int                        `json:"min_lead_time_minutes"`
	BlockedDates           []string                   `json:"blocked_dates"`
	WhatsAppPhone          string                     `json:"whatsapp_phone"`
}

func (h *SettingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settingsToPayload(settings))
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	settings, errMsg := payloadToSettings(req)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if err := h.settings.Update(r.Context(), settings); err != nil {
		h.logger.Error("settings update failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settingsToPayload(settings))
}

type blockedDateRequest struct {
	Date    string `json:"date"`
	Blocked bool   `json:"blocked"`
}

// BlockedDates adds or removes a whole blocked day, driven by the Blocked
// flag in the body.
func (h *SettingsHandler) BlockedDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req blockedDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	if req.Blocked {
		err = h.settings.AddBlockedDate(r.Context(), date)
	} else {
		err = h.settings.RemoveBlockedDate(r.Context(), date)
	}
	if err != nil {
		h.logger.Error("blocked date update failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date.String(), "blocked": req.Blocked})
}

func settingsToPayload(s model.Settings) settingsPayload {
	hours := make(map[string]dayHoursPayload, len(s.Hours))
	for wd, dh := range s.Hours {
		entry := dayHoursPayload{Open: dh.Open}
		if dh.Open {
			entry.Start = dh.Start.String()
			entry.End = dh.End.String()
		}
		hours[wd.String()] = entry
	}
	blocked := make([]string, 0, len(s.BlockedDates))
	for _, d := range s.BlockedDates {
		blocked = append(blocked, d.String())
	}
	return settingsPayload{
		Hours:                  hours,
		SlotGranularityMinutes: s.SlotGranularityMinutes,
		MinLeadTimeMinutes:     s.MinLeadTimeMinutes,
		BlockedDates:           blocked,
		WhatsAppPhone:          s.WhatsAppPhone,
	}
}

func payloadToSettings(req settingsPayload) (model.Settings, string) {
	if req.SlotGranularityMinutes <= 0 {
		return model.Settings{}, "slot_granularity_minutes must be positive"
	}
	if req.MinLeadTimeMinutes < 0 {
		return model.Settings{}, "min_lead_time_minutes must not be negative"
	}

	hours := schedule.OperatingHours{}
	for name, entry := range req.Hours {
		wd, ok := schedule.ParseWeekday(name)
		if !ok {
			return model.Settings{}, "unknown weekday " + name
		}
		if !entry.Open {
			hours[wd] = schedule.DayHours{}
			continue
		}
		start, err := schedule.ParseClock(entry.Start)
		if err != nil {
			return model.Settings{}, "invalid start time for " + name
		}
		end, err := schedule.ParseClock(entry.End)
		if err != nil {
			return model.Settings{}, "invalid end time for " + name
		}
		if end <= start {
			return model.Settings{}, "end must be after start for " + name
		}
		hours[wd] = schedule.DayHours{Open: true, Start: start, End: end}
	}

	var blocked []schedule.Date
	for _, raw := range req.BlockedDates {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			return model.Settings{}, "invalid blocked date " + raw
		}
		blocked = append(blocked, d)
	}

	return model.Settings{
		Hours:                  hours,
		SlotGranularityMinutes: req.SlotGranularityMinutes,
		MinLeadTimeMinutes:     req.MinLeadTimeMinutes,
		BlockedDates:           blocked,
		WhatsAppPhone:          req.WhatsAppPhone,
	}, ""
}
