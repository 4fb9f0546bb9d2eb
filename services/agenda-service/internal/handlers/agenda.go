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

// AgendaHandler serves the admin's day grid and its mutations: manual
// bookings, block toggles, and reservation removal.
type AgendaHandler struct {
	services     *storage.ServiceRepository
	settings     *storage.SettingsRepository
	reservations *storage.ReservationRepository
	committer    *Committer
	logger       *slog.Logger
	loc          *time.Location
}

func NewAgendaHandler(
	services *storage.ServiceRepository,
	settings *storage.SettingsRepository,
	reservations *storage.ReservationRepository,
	committer *Committer,
	logger *slog.Logger,
	loc *time.Location,
) *AgendaHandler {
	return &AgendaHandler{
		services:     services,
		settings:     settings,
		reservations: reservations,
		committer:    committer,
		logger:       logger,
		loc:          loc,
	}
}

type agendaCell struct {
	Time        string             `json:"time"`
	State       string             `json:"state"`
	StartsHere  bool               `json:"starts_here,omitempty"`
	Reservation *agendaReservation `json:"reservation,omitempty"`
}

type agendaReservation struct {
	ID              string  `json:"id"`
	ClientName      string  `json:"client_name,omitempty"`
	ClientPhone     string  `json:"client_phone,omitempty"`
	ServiceName     string  `json:"service_name,omitempty"`
	ServicePrice    float64 `json:"service_price,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
}

func (h *AgendaHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := schedule.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	existing, err := h.reservations.ListByDay(ctx, date)
	if err != nil {
		h.logger.Error("reservation list failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	byStart := make(map[schedule.TimeOfDay]model.Reservation, len(existing))
	for _, res := range existing {
		byStart[res.Start] = res
	}

	cells := schedule.Occupancy(date, settings.Hours, settings.Policy(), engineView(existing))
	items := make([]agendaCell, 0, len(cells))
	for _, cell := range cells {
		item := agendaCell{
			Time:       cell.Start.String(),
			State:      string(cell.State),
			StartsHere: cell.StartsHere,
		}
		if cell.Reservation != nil {
			if res, ok := byStart[cell.Reservation.Start]; ok {
				item.Reservation = &agendaReservation{
					ID:              res.ID,
					ClientName:      res.ClientName,
					ClientPhone:     res.ClientPhone,
					ServiceName:     res.ServiceName,
					ServicePrice:    res.ServicePrice,
					DurationMinutes: res.DurationMinutes,
				}
			}
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// ManualBook books on the admin's behalf. Unlike the public path it ignores
// the lead-time window: the barber can always pencil in a walk-in.
func (h *AgendaHandler) ManualBook(w http.ResponseWriter, r *http.Request) {
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
	if req.ClientName == "" {
		http.Error(w, "missing client name", http.StatusBadRequest)
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
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if reason := checkSlotRequest(date, start, svc.DurationMinutes, settings, now(h.loc), false); reason != "" {
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
		ClientPhone:     strings.TrimSpace(req.ClientPhone),
		ServiceName:     svc.Name,
		ServicePrice:    svc.Price,
	}
	if err := h.committer.CommitBooking(ctx, res, settings); err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			http.Error(w, "slot already taken", http.StatusConflict)
			return
		}
		h.logger.Error("manual booking failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, bookResponse{
		ReservationID: res.ID,
		Date:          res.Day.String(),
		Time:          res.Start.String(),
		ServiceName:   res.ServiceName,
	})
}

type toggleBlockRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type toggleBlockResponse struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Blocked bool   `json:"blocked"`
}

func (h *AgendaHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req toggleBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
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
	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	blocked, err := h.reservations.ToggleBlock(ctx, date, start, settings.SlotGranularityMinutes, uuid.NewString())
	if errors.Is(err, storage.ErrSlotBooked) {
		http.Error(w, "cannot block a booked slot", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("toggle block failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toggleBlockResponse{Date: date.String(), Time: start.String(), Blocked: blocked})
}

type removeResponse struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Removed bool   `json:"removed"`
}

// Remove deletes whatever sits at (date, time). Removing an already empty
// slot succeeds: the endpoint is idempotent.
func (h *AgendaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := schedule.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, err := schedule.ParseClock(r.URL.Query().Get("time"))
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("settings read failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	_, err = h.committer.Remove(ctx, date, start, settings.WhatsAppPhone)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("reservation removal failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, removeResponse{
		Date:    date.String(),
		Time:    start.String(),
		Removed: err == nil,
	})
}
