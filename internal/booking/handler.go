package booking

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/server"
	"github.com/DriveBook/DriveBook/internal/identity"
)

// Handler exposes the reservation endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires the reservation routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reservations", h.list)
	mux.HandleFunc("GET /api/reservations/{id}", h.get)
	mux.HandleFunc("POST /api/reservations/available", h.available)
	mux.HandleFunc("POST /api/reservations", h.create)
	mux.HandleFunc("PUT /api/reservations/{id}", h.update)
	mux.HandleFunc("DELETE /api/reservations/{id}", h.delete)
}

type rangeRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type createRequest struct {
	CarID     uint      `json:"car_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type reservationView struct {
	ID        uint   `json:"id"`
	CarID     uint   `json:"car_id"`
	CarLabel  string `json:"car_label,omitempty"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func toView(res *Reservation) reservationView {
	v := reservationView{
		ID:        res.ID,
		CarID:     res.CarID,
		UserID:    res.UserID,
		StartDate: res.StartDate.UTC().Format(time.RFC3339),
		EndDate:   res.EndDate.UTC().Format(time.RFC3339),
	}
	if res.Car != nil {
		v.CarLabel = res.Car.Label()
	}
	if res.User != nil {
		v.Username = res.User.Username
	}
	return v
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	rows, err := h.svc.List(r.Context(), actor)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	out := make([]reservationView, 0, len(rows))
	for i := range rows {
		out = append(out, toView(&rows[i]))
	}
	server.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	res, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toView(res))
}

func (h *Handler) available(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}
	cars, err := h.svc.AvailableCars(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, cars)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	var req createRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}
	res, err := h.svc.Create(r.Context(), actor, req.CarID, req.StartDate, req.EndDate)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, toView(res))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	var req rangeRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}
	res, err := h.svc.UpdateDates(r.Context(), actor, id, req.StartDate, req.EndDate)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toView(res))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actorFrom builds the booking Actor from the authenticated request context,
// mapping token role names through the typed role set.
func actorFrom(r *http.Request) (Actor, error) {
	ai, ok := server.AuthFromContext(r.Context())
	if !ok || ai.Subject == "" {
		return Actor{}, fmt.Errorf("missing auth: %w", apperr.ErrUnauthorized)
	}
	roles := identity.ParseRoles(ai.Roles)
	return Actor{UserID: ai.Subject, Admin: identity.IsAdmin(roles)}, nil
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, apperr.ErrValidation)
	}
	return uint(id), nil
}
