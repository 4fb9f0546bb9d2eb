package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

// PublicHandler serves the unauthenticated booking surface: the service
// catalog, the availability grid, and the booking commit.
type PublicHandler struct {
	services     *storage.ServiceRepository
	settings     *storage.SettingsRepository
	reservations *storage.ReservationRepository
	committer    *Committer
	logger       *slog.Logger
	loc          *time.Location
}

func NewPublicHandler(
	services *storage.ServiceRepository,
	settings *storage.SettingsRepository,
	reservations *storage.ReservationRepository,
	committer *Committer,
	logger *slog.Logger,
	loc *time.Location,
) *PublicHandler {
	return &PublicHandler{
		services:     services,
		settings:     settings,
		reservations: reservations,
		committer:    committer,
		logger:       logger,
		loc:          loc,
	}
}

type serviceItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
}

func (h *PublicHandler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.services.List(r.Context(), true)
	if err != nil {
		h.logger.Error("service list failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{ID: s.ID, Name: s.Name, Price: s.Price, DurationMinutes: s.DurationMinutes})
	}
	writeJSON(w, http.StatusOK, items)
}

type slotItem struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

func (h *PublicHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := schedule.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID == "" {
		http.Error(w, "missing service_id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, err := h.services.Get(ctx, serviceID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("service lookup failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	// A misconfigured or unreadable schedule renders as "no availability",
	// never as an error page for the booking widget.
	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		writeJSON(w, http.StatusOK, []slotItem{})
		return
	}
	existing, err := h.reservations.ListByDay(ctx, date)
	if err != nil {
		h.logger.Error("reservation list failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	slots := schedule.BookingSlots(date, settings.Hours, settings.Policy(), engineView(existing), svc.DurationMinutes, now(h.loc))
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{Time: s.Start.String(), Available: s.Available})
	}
	writeJSON(w, http.StatusOK, items)
}

type bookRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceID   string `json:"service_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
}

type bookResponse struct {
	ReservationID string `json:"reservation_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	ServiceName   string `json:"service_name"`
	WhatsAppPhone string `json:"whatsapp_phone,omitempty"`
}

func (h *PublicHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)
	if req.ClientName == "" || req.ClientPhone == "" {
		http.Error(w, "missing client name or phone", http.StatusBadRequest)
		return
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, err := schedule.ParseClock(req.Time)
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, err := h.services.Get(ctx, strings.TrimSpace(req.ServiceID))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("service lookup failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		http.Error(w, "scheduling unavailable", http.StatusServiceUnavailable)
		return
	}

	if reason := checkSlotRequest(date, start, svc.DurationMinutes, settings, now(h.loc), true); reason != "" {
		http.Error(w, reason, http.StatusUnprocessableEntity)
		return
	}

	res := &model.Reservation{
		ID:              uuid.NewString(),
		Day:             date,
		Start:           start,
		DurationMinutes: svc.DurationMinutes,
		Kind:            schedule.KindBooking,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ServiceName:     svc.Name,
		ServicePrice:    svc.Price,
	}
	if err := h.committer.CommitBooking(ctx, res, settings); err != nil {
		switch {
		case errors.Is(err, storage.ErrSlotTaken):
			http.Error(w, "slot already taken", http.StatusConflict)
		case errors.Is(err, storage.ErrInvalidDuration):
			http.Error(w, "invalid duration", http.StatusBadRequest)
		default:
			h.logger.Error("booking commit failed", "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("booking committed",
		"reservation_id", res.ID,
		"day", res.Day.String(),
		"start", res.Start.String(),
		"service", res.ServiceName,
	)
	writeJSON(w, http.StatusCreated, bookResponse{
		ReservationID: res.ID,
		Date:          res.Day.String(),
		Time:          res.Start.String(),
		ServiceName:   res.ServiceName,
		WhatsAppPhone: settings.WhatsAppPhone,
	})
}

// checkSlotRequest re-validates a requested slot against the schedule just
// before commit. It returns an empty string when the slot is acceptable, or
// the rejection reason. The database still has the final word on conflicts.
func checkSlotRequest(date schedule.Date, start schedule.TimeOfDay, durationMinutes int, settings model.Settings, current schedule.Now, enforceLead bool) string {
	policy := settings.Policy()
	if policy.SlotGranularityMinutes <= 0 {
		return "scheduling misconfigured"
	}
	if policy.DateBlocked(date) {
		return "date is blocked"
	}
	day, ok := settings.Hours[date.Weekday()]
	if !ok || !day.Open {
		return "closed on this day"
	}
	if start < day.Start || start+schedule.TimeOfDay(durationMinutes) > day.End {
		return "outside operating hours"
	}
	if int(start-day.Start)%policy.SlotGranularityMinutes != 0 {
		return "time not aligned to slot grid"
	}
	if enforceLead {
		if date.Before(current.Date) {
			return "date is in the past"
		}
		if date == current.Date && start < current.Time+schedule.TimeOfDay(policy.MinLeadTimeMinutes) {
			return "insufficient lead time"
		}
	}
	return ""
}

func engineView(reservations []model.Reservation) []schedule.Reservation {
	out := make([]schedule.Reservation, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, r.Slot())
	}
	return out
}
