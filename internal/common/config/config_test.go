package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("expected mysql driver, got %s", cfg.Database.Driver)
	}
	if !cfg.Auth.Enabled {
		t.Fatalf("expected auth enabled by default")
	}
	if roles, ok := cfg.Auth.RBAC["POST /api/cars"]; !ok || len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("expected car creation restricted to admin, got %#v", roles)
	}

	found := false
	for _, p := range cfg.Auth.PublicPaths {
		if p == "/api/users/login" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected login to be public")
	}
}
