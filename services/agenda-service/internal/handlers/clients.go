package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

type ClientsHandler struct {
	clients *storage.ClientRepository
	logger  *slog.Logger
}

func NewClientsHandler(clients *storage.ClientRepository, logger *slog.Logger) *ClientsHandler {
	return &ClientsHandler{clients: clients, logger: logger}
}

type clientPayload struct {
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	ClipperSize string `json:"clipper_size,omitempty"`
	Notes       string `json:"notes,omitempty"`
	LastTopic   string `json:"last_topic,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (h *ClientsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost, http.MethodPut:
		h.upsert(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ClientsHandler) list(w http.ResponseWriter, r *http.Request) {
	if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
		c, err := h.clients.Get(r.Context(), phone)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.logger.Error("client lookup failed", "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, clientToPayload(c))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	clients, err := h.clients.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("client list failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	items := make([]clientPayload, 0, len(clients))
	for _, c := range clients {
		items = append(items, clientToPayload(c))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ClientsHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req clientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	req.Name = strings.TrimSpace(req.Name)
	if req.Phone == "" || req.Name == "" {
		http.Error(w, "missing phone or name", http.StatusBadRequest)
		return
	}

	err := h.clients.Upsert(r.Context(), model.Client{
		Phone:       req.Phone,
		Name:        req.Name,
		ClipperSize: strings.TrimSpace(req.ClipperSize),
		Notes:       strings.TrimSpace(req.Notes),
		LastTopic:   strings.TrimSpace(req.LastTopic),
	})
	if err != nil {
		h.logger.Error("client upsert failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *ClientsHandler) delete(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		http.Error(w, "missing phone", http.StatusBadRequest)
		return
	}
	err := h.clients.Delete(r.Context(), phone)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("client delete failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func clientToPayload(c model.Client) clientPayload {
	return clientPayload{
		Phone:       c.Phone,
		Name:        c.Name,
		ClipperSize: c.ClipperSize,
		Notes:       c.Notes,
		LastTopic:   c.LastTopic,
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
