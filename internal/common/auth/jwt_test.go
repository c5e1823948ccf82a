package auth

import (
	"testing"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "drivebook",
		Audience:  "drivebook",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", []string{"user", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[1] != "admin" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "drivebook"}
	token, _, err := GenerateAccessToken(cfg, "u-1", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "secret-b", Issuer: "drivebook"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", Issuer: "someone-else"}
	token, _, err := GenerateAccessToken(cfg, "u-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	cfg.Issuer = "drivebook"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected issuer mismatch failure")
	}
}
