package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byName map[string]*User
	byID   map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: map[string]*User{}, byID: map[string]*User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := f.byName[u.Username]; ok {
		return fmt.Errorf("duplicate username: %w", apperr.ErrConflict)
	}
	f.byName[u.Username] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return u, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:        true,
		JWTSecret:      "test-secret",
		Issuer:         "drivebook",
		Audience:       "drivebook",
		BootstrapAdmin: "root",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleUser}, u.RolesSlice())

	res, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterBootstrapAdmin(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	u, err := svc.Register(context.Background(), RegisterInput{Username: "root", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, IsAdmin(u.RolesSlice()))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterInput{Username: "", Password: "pw"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
