package catalog

import (
	"fmt"
	"time"
)

// Car is the GORM model of the cars table. PricePerDay is stored in minor
// currency units (grosze/cents) to keep arithmetic exact.
type Car struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Brand       string    `gorm:"size:64;not null" json:"brand"`
	Model       string    `gorm:"size:64;not null" json:"model"`
	Year        int       `gorm:"not null" json:"year"`
	PricePerDay int64     `gorm:"not null" json:"price_per_day"`
	Currency    string    `gorm:"size:8;not null;default:'PLN'" json:"currency"`
	Version     int64     `gorm:"not null;default:1" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Label renders the choice label shown when picking an available car,
// e.g. "Peugeot | 308 | 2019 | 45.00 PLN".
func (c Car) Label() string {
	return fmt.Sprintf("%s | %s | %d | %d.%02d %s",
		c.Brand, c.Model, c.Year, c.PricePerDay/100, c.PricePerDay%100, c.Currency)
}
