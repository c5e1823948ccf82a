package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"gorm.io/gorm"
)

// Repo is the persistence port for users. The gorm implementation is the only
// production one; tests use fakes.
type Repo interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

type gormRepo struct {
	db *gorm.DB
}

// NewRepo creates the gorm-backed user repository.
func NewRepo(db *gorm.DB) Repo {
	return &gormRepo{db: db}
}

func (r *gormRepo) Create(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
