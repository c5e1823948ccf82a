package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"gorm.io/gorm"
)

// Repo is the persistence port for the car catalog.
type Repo interface {
	Create(ctx context.Context, c *Car) error
	FindByID(ctx context.Context, id uint) (*Car, error)
	List(ctx context.Context) ([]Car, error)
	// Update writes the car conditioned on its version being unchanged.
	// A concurrent change surfaces as ErrConflict, a vanished row as
	// ErrNotFound.
	Update(ctx context.Context, c *Car) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type gormRepo struct {
	db *gorm.DB
}

// NewRepo creates the gorm-backed catalog repository.
func NewRepo(db *gorm.DB) Repo {
	return &gormRepo{db: db}
}

func (r *gormRepo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *gormRepo) Create(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *gormRepo) FindByID(ctx context.Context, id uint) (*Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	err := db.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("car %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the whole catalog ordered by id so the UI choice list is
// stable across requests.
func (r *gormRepo) List(ctx context.Context) ([]Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var cars []Car
	if err := db.Order("id asc").Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *gormRepo) Update(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}

	res := db.Model(&Car{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"brand":         c.Brand,
			"model":         c.Model,
			"year":          c.Year,
			"price_per_day": c.PricePerDay,
			"currency":      c.Currency,
			"version":       c.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a lost race from a vanished row
		var n int64
		if err := db.Model(&Car{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("car %d: %w", c.ID, apperr.ErrNotFound)
		}
		return fmt.Errorf("car %d was modified concurrently: %w", c.ID, apperr.ErrConflict)
	}
	c.Version++
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, id uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Delete(&Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *gormRepo) Count(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Car{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
