package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/auth"
	"github.com/DriveBook/DriveBook/internal/common/config"
)

func authTestConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "drivebook",
		Audience:    "drivebook",
		PublicPaths: []string{"/healthz"},
		RBAC: map[string][]string{
			"POST /api/cars": {"admin"},
		},
	}
}

func TestJWTAuthMiddlewareAndRBAC(t *testing.T) {
	cfg := authTestConfig()

	adminToken, _, err := auth.GenerateAccessToken(cfg, "u-1", []string{"user", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}
	userToken, _, err := auth.GenerateAccessToken(cfg, "u-2", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("sign user token: %v", err)
	}

	var gotSubject string
	handler := Chain(
		JWTAuthMiddleware(cfg, nil),
		RBACMiddleware(cfg),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ai, ok := AuthFromContext(r.Context())
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		gotSubject = ai.Subject
		w.WriteHeader(http.StatusOK)
	}))

	// admin may create cars
	req := httptest.NewRequest(http.MethodPost, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin allowed, got %d", rec.Code)
	}
	if gotSubject != "u-1" {
		t.Fatalf("subject mismatch: %s", gotSubject)
	}

	// plain user is rejected by RBAC
	req = httptest.NewRequest(http.MethodPost, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	// missing token is rejected by auth
	req = httptest.NewRequest(http.MethodPost, "/api/cars", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// public path passes without a token
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected public path allowed, got %d", rec.Code)
	}
}

func TestRequiredRolesLongestPrefixWins(t *testing.T) {
	rbac := map[string][]string{
		"GET /api":      {"user"},
		"GET /api/cars": {"admin"},
	}
	got := requiredRoles(rbac, http.MethodGet, "/api/cars/7")
	if len(got) != 1 || got[0] != "admin" {
		t.Fatalf("expected admin from longest prefix, got %#v", got)
	}
	got = requiredRoles(rbac, http.MethodGet, "/api/reservations")
	if len(got) != 1 || got[0] != "user" {
		t.Fatalf("expected user from short prefix, got %#v", got)
	}
	if got := requiredRoles(rbac, http.MethodDelete, "/api/cars"); got != nil {
		t.Fatalf("expected no requirement for unmatched method, got %#v", got)
	}
}
