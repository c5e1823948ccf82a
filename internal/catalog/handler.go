package catalog

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/server"
)

// Handler exposes the catalog endpoints. Write access is restricted to the
// admin role by the RBAC middleware.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires the catalog routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cars", h.list)
	mux.HandleFunc("GET /api/cars/{id}", h.get)
	mux.HandleFunc("POST /api/cars", h.create)
	mux.HandleFunc("PUT /api/cars/{id}", h.update)
	mux.HandleFunc("DELETE /api/cars/{id}", h.delete)
}

type carRequest struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	PricePerDay int64  `json:"price_per_day"`
	Currency    string `json:"currency"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.List(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, cars)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), CarInput{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		Currency:    req.Currency,
	})
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	var req carRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), id, CarInput{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		Currency:    req.Currency,
	})
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, apperr.ErrValidation)
	}
	return uint(id), nil
}
