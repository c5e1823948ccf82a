package booking

import (
	"fmt"
	"time"

	"github.com/DriveBook/DriveBook/internal/catalog"
	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/identity"
)

// Reservation is the GORM model of the reservations table. StartDate and
// EndDate are always stored in UTC; the pair is a half-open interval
// [StartDate, EndDate).
type Reservation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CarID     uint           `gorm:"index;not null" json:"car_id"`
	Car       *catalog.Car   `gorm:"foreignKey:CarID" json:"car,omitempty"`
	UserID    string         `gorm:"index;size:36;not null" json:"user_id"`
	User      *identity.User `gorm:"foreignKey:UserID" json:"-"`
	StartDate time.Time      `gorm:"index;not null" json:"start_date"`
	EndDate   time.Time      `gorm:"index;not null" json:"end_date"`
	Version   int64          `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"-"`
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) share
// at least one instant. Back-to-back ranges, where one ends exactly when the
// other begins, do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// NormalizeRange converts a requested interval to UTC and enforces
// start < end. Stored intervals are only ever compared in UTC.
func NormalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date: %w", apperr.ErrValidation)
	}
	return start, end, nil
}
