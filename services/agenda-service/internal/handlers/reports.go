package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

type ReportsHandler struct {
	reservations *storage.ReservationRepository
	logger       *slog.Logger
}

func NewReportsHandler(reservations *storage.ReservationRepository, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{reservations: reservations, logger: logger}
}

type reportDayRow struct {
	Day      string  `json:"day"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type reportServiceRow struct {
	ServiceName string  `json:"service_name"`
	Bookings    int     `json:"bookings"`
	Revenue     float64 `json:"revenue"`
}

type reportResponse struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	TotalRevenue float64            `json:"total_revenue"`
	Bookings     int                `json:"bookings"`
	ByDay        []reportDayRow     `json:"by_day"`
	ByService    []reportServiceRow `json:"by_service"`
}

// Handle builds the period revenue report; format=csv streams the per-day
// rows as a spreadsheet instead.
func (h *ReportsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, err := schedule.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := schedule.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, "to must not precede from", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	total, bookings, err := h.reservations.RevenueBetween(ctx, from, to)
	if err != nil {
		h.logger.Error("report totals failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	byDay, err := h.reservations.RevenueByDay(ctx, from, to)
	if err != nil {
		h.logger.Error("report by day failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	byService, err := h.reservations.RevenueByService(ctx, from, to)
	if err != nil {
		h.logger.Error("report by service failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		h.writeCSV(w, from, to, byDay)
		return
	}

	resp := reportResponse{
		From:         from.String(),
		To:           to.String(),
		TotalRevenue: total,
		Bookings:     bookings,
		ByDay:        make([]reportDayRow, 0, len(byDay)),
		ByService:    make([]reportServiceRow, 0, len(byService)),
	}
	for _, d := range byDay {
		resp.ByDay = append(resp.ByDay, reportDayRow{Day: d.Day.String(), Bookings: d.Bookings, Revenue: d.Revenue})
	}
	for _, s := range byService {
		resp.ByService = append(resp.ByService, reportServiceRow{ServiceName: s.ServiceName, Bookings: s.Bookings, Revenue: s.Revenue})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportsHandler) writeCSV(w http.ResponseWriter, from, to schedule.Date, rows []storage.DayRevenue) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="report_%s_%s.csv"`, from.String(), to.String()))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"day", "bookings", "revenue"})
	for _, row := range rows {
		_ = cw.Write([]string{
			row.Day.String(),
			fmt.Sprintf("%d", row.Bookings),
			fmt.Sprintf("%.2f", row.Revenue),
		})
	}
	cw.Flush()
}
