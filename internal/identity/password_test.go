package identity

import "testing"

func TestPasswordHashAndVerify(t *testing.T) {
	salt, err := GenerateSaltHex()
	if err != nil {
		t.Fatalf("GenerateSaltHex: %v", err)
	}
	hash, err := HashPassword("p@ssw0rd", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyPassword("p@ssw0rd", salt, hash) {
		t.Fatalf("expected verify ok")
	}
	if VerifyPassword("wrong", salt, hash) {
		t.Fatalf("expected verify fail")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Admin "); !ok || r != RoleAdmin {
		t.Fatalf("expected admin, got %q ok=%v", r, ok)
	}
	if r, ok := ParseRole("user"); !ok || r != RoleUser {
		t.Fatalf("expected user, got %q ok=%v", r, ok)
	}
	if _, ok := ParseRole("superadmin"); ok {
		t.Fatalf("expected unknown role rejected")
	}
}

func TestRolesRoundTrip(t *testing.T) {
	u := User{Roles: "user,admin,bogus"}
	roles := u.RolesSlice()
	if len(roles) != 2 {
		t.Fatalf("expected bogus dropped, got %#v", roles)
	}
	if !IsAdmin(roles) {
		t.Fatalf("expected admin in set")
	}
	if RolesJoin(roles) != "user,admin" {
		t.Fatalf("join mismatch: %s", RolesJoin(roles))
	}
}
