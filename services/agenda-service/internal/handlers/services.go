package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

// ServicesHandler is the admin catalog CRUD on a single route: method
// selects the operation, ids travel in the body or query string.
type ServicesHandler struct {
	services *storage.ServiceRepository
	logger   *slog.Logger
}

func NewServicesHandler(services *storage.ServiceRepository, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{services: services, logger: logger}
}

type servicePayload struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	Active          bool    `json:"active"`
}

func (h *ServicesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ServicesHandler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.List(r.Context(), false)
	if err != nil {
		h.logger.Error("service list failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	items := make([]servicePayload, 0, len(services))
	for _, s := range services {
		items = append(items, servicePayload{
			ID:              s.ID,
			Name:            s.Name,
			Price:           s.Price,
			DurationMinutes: s.DurationMinutes,
			Active:          s.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ServicesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req servicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMinutes <= 0 || req.Price < 0 {
		http.Error(w, "invalid service fields", http.StatusBadRequest)
		return
	}

	svc, err := h.services.Create(r.Context(), req.Name, req.Price, req.DurationMinutes)
	if err != nil {
		h.logger.Error("service create failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, servicePayload{
		ID:              svc.ID,
		Name:            svc.Name,
		Price:           svc.Price,
		DurationMinutes: svc.DurationMinutes,
		Active:          svc.Active,
	})
}

func (h *ServicesHandler) update(w http.ResponseWriter, r *http.Request) {
	var req servicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" || req.DurationMinutes <= 0 || req.Price < 0 {
		http.Error(w, "invalid service fields", http.StatusBadRequest)
		return
	}

	err := h.services.Update(r.Context(), model.Service{
		ID:              req.ID,
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active,
	})
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("service update failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *ServicesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	err := h.services.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("service delete failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
