package identity

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/server"
)

// Handler exposes the identity endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires the identity routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/register", h.register)
	mux.HandleFunc("POST /api/users/login", h.login)
	mux.HandleFunc("GET /api/users/me", h.me)
}

type userView struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Nickname  string   `json:"nickname,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	CreatedAt int64    `json:"created_at"`
}

func toUserView(u *User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Roles:     RoleNames(u.RolesSlice()),
		CreatedAt: u.CreatedAt.Unix(),
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
		Email    string `json:"email"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}

	u, err := h.svc.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
		Email:    req.Email,
	})
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, toUserView(u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": res.AccessToken,
		"expires_at":   res.ExpiresAt.UTC().Format(time.RFC3339),
		"user":         toUserView(res.User),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ai, ok := server.AuthFromContext(r.Context())
	if !ok {
		server.WriteError(w, fmt.Errorf("missing auth: %w", apperr.ErrUnauthorized))
		return
	}
	u, err := h.svc.Profile(r.Context(), ai.Subject)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toUserView(u))
}
