package identity

import (
	"strings"
	"time"
)

// Role is the capability level of a user. Exactly two levels exist.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a role name onto the enum. Unknown names are rejected so a
// typo in a token or a row can never grant anything.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// ParseRoles maps a list of role names, dropping anything unknown.
func ParseRoles(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			out = append(out, r)
		}
	}
	return out
}

// IsAdmin reports whether the role set contains the admin capability.
func IsAdmin(roles []Role) bool {
	for _, r := range roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// User is the GORM model of the users table.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	PasswordSalt string    `gorm:"size:64;not null"`
	Nickname     string    `gorm:"size:64"`
	Email        string    `gorm:"size:128"`
	Roles        string    `gorm:"size:256;not null"` // comma separated, e.g. "user,admin"
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// RolesSlice splits the stored role column into the typed enum.
func (u User) RolesSlice() []Role {
	if strings.TrimSpace(u.Roles) == "" {
		return nil
	}
	return ParseRoles(strings.Split(u.Roles, ","))
}

// RolesJoin renders a role set into the stored column format.
func RolesJoin(roles []Role) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return strings.Join(out, ",")
}

// RoleNames renders a role set as plain strings for the JWT roles claim.
func RoleNames(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
