package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

type DashboardHandler struct {
	reservations *storage.ReservationRepository
	logger       *slog.Logger
	loc          *time.Location
}

func NewDashboardHandler(reservations *storage.ReservationRepository, logger *slog.Logger, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{reservations: reservations, logger: logger, loc: loc}
}

type dashboardUpcoming struct {
	Time        string `json:"time"`
	ClientName  string `json:"client_name"`
	ServiceName string `json:"service_name"`
}

type dashboardResponse struct {
	Date          string              `json:"date"`
	BookingsToday int                 `json:"bookings_today"`
	RevenueToday  float64             `json:"revenue_today"`
	Upcoming      []dashboardUpcoming `json:"upcoming"`
}

// Handle summarizes today: booking count, revenue, and the next clients in
// the chair. Blocks are excluded everywhere.
func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	current := now(h.loc)
	today := current.Date

	count, err := h.reservations.CountBookingsOnDay(ctx, today)
	if err != nil {
		h.logger.Error("dashboard count failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	revenue, _, err := h.reservations.RevenueBetween(ctx, today, today)
	if err != nil {
		h.logger.Error("dashboard revenue failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	upcoming, err := h.reservations.UpcomingBookings(ctx, today, current.Time, 5)
	if err != nil {
		h.logger.Error("dashboard upcoming failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	resp := dashboardResponse{
		Date:          today.String(),
		BookingsToday: count,
		RevenueToday:  revenue,
		Upcoming:      make([]dashboardUpcoming, 0, len(upcoming)),
	}
	for _, res := range upcoming {
		resp.Upcoming = append(resp.Upcoming, dashboardUpcoming{
			Time:        res.Start.String(),
			ClientName:  res.ClientName,
			ServiceName: res.ServiceName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
