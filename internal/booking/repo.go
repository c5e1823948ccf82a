package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo is the persistence port for the reservation ledger.
type Repo interface {
	// CreateIfAvailable inserts the reservation only if no existing row for
	// the same car overlaps its interval. Check and insert run in one
	// transaction so two racing creates cannot both succeed.
	CreateIfAvailable(ctx context.Context, res *Reservation) error
	FindByID(ctx context.Context, id uint) (*Reservation, error)
	List(ctx context.Context) ([]Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
	// ReservedCarIDs returns the distinct car ids with at least one
	// reservation overlapping [start, end).
	ReservedCarIDs(ctx context.Context, start, end time.Time) ([]uint, error)
	// UpdateDates writes new dates conditioned on the version being
	// unchanged. A lost race surfaces as ErrConflict; a vanished row as
	// ErrNotFound.
	UpdateDates(ctx context.Context, res *Reservation) error
	Delete(ctx context.Context, id uint) error
	CountByCar(ctx context.Context, carID uint) (int64, error)
}

type gormRepo struct {
	db *gorm.DB
}

// NewRepo creates the gorm-backed reservation repository.
func NewRepo(db *gorm.DB) Repo {
	return &gormRepo{db: db}
}

func (r *gormRepo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *gormRepo) CreateIfAvailable(ctx context.Context, res *Reservation) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		// Lock the car's conflicting rows; InnoDB next-key locks make two
		// racing creates for the same car serialize here.
		var n int64
		err := tx.Model(&Reservation{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("car_id = ? AND start_date < ? AND end_date > ?",
				res.CarID, res.EndDate, res.StartDate).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("car %d is already booked in the requested range: %w",
				res.CarID, apperr.ErrConflict)
		}
		return tx.Create(res).Error
	})
}

func (r *gormRepo) FindByID(ctx context.Context, id uint) (*Reservation, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var res Reservation
	err := db.Preload("Car").Preload("User").Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("reservation %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	normalizeUTC(&res)
	return &res, nil
}

func (r *gormRepo) List(ctx context.Context) ([]Reservation, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Reservation
	if err := db.Preload("Car").Preload("User").Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		normalizeUTC(&out[i])
	}
	return out, nil
}

func (r *gormRepo) ListByUser(ctx context.Context, userID string) ([]Reservation, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Reservation
	err := db.Preload("Car").Preload("User").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		normalizeUTC(&out[i])
	}
	return out, nil
}

func (r *gormRepo) ReservedCarIDs(ctx context.Context, start, end time.Time) ([]uint, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ids []uint
	err := db.Model(&Reservation{}).
		Where("start_date < ? AND end_date > ?", end, start).
		Distinct("car_id").
		Pluck("car_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gormRepo) UpdateDates(ctx context.Context, res *Reservation) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	upd := db.Model(&Reservation{}).
		Where("id = ? AND version = ?", res.ID, res.Version).
		Updates(map[string]any{
			"start_date": res.StartDate,
			"end_date":   res.EndDate,
			"version":    res.Version + 1,
		})
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected == 0 {
		// distinguish a lost race from a concurrently deleted row
		var n int64
		if err := db.Model(&Reservation{}).Where("id = ?", res.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("reservation %d: %w", res.ID, apperr.ErrNotFound)
		}
		return fmt.Errorf("reservation %d was modified concurrently: %w", res.ID, apperr.ErrConflict)
	}
	res.Version++
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, id uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Delete(&Reservation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *gormRepo) CountByCar(ctx context.Context, carID uint) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Reservation{}).Where("car_id = ?", carID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// normalizeUTC pins loaded timestamps to UTC regardless of the driver's
// session location.
func normalizeUTC(res *Reservation) {
	res.StartDate = res.StartDate.UTC()
	res.EndDate = res.EndDate.UTC()
}
