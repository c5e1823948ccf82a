package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
)

// ReservationCounter reports how many reservations reference a car. The
// booking repository satisfies it; declared here so catalog does not import
// booking.
type ReservationCounter interface {
	CountByCar(ctx context.Context, carID uint) (int64, error)
}

// Service implements the admin CRUD over the car catalog.
type Service struct {
	repo         Repo
	reservations ReservationCounter
}

func NewService(repo Repo, reservations ReservationCounter) *Service {
	return &Service{repo: repo, reservations: reservations}
}

// CarInput carries the create/update form.
type CarInput struct {
	Brand       string
	Model       string
	Year        int
	PricePerDay int64
	Currency    string
}

func (in CarInput) validate() error {
	if strings.TrimSpace(in.Brand) == "" {
		return fmt.Errorf("brand required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Model) == "" {
		return fmt.Errorf("model required: %w", apperr.ErrValidation)
	}
	if in.Year < 1950 || in.Year > time.Now().Year()+1 {
		return fmt.Errorf("year %d out of range: %w", in.Year, apperr.ErrValidation)
	}
	if in.PricePerDay < 0 {
		return fmt.Errorf("price per day must be non-negative: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CarInput) (*Car, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &Car{
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Year:        in.Year,
		PricePerDay: in.PricePerDay,
		Currency:    normalizeCurrency(in.Currency),
		Version:     1,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Car, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Car, error) {
	return s.repo.List(ctx)
}

// Update edits a car in place. The read-modify-write is guarded by the
// version column; a lost race surfaces as ErrConflict.
func (s *Service) Update(ctx context.Context, id uint, in CarInput) (*Car, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Brand = strings.TrimSpace(in.Brand)
	c.Model = strings.TrimSpace(in.Model)
	c.Year = in.Year
	c.PricePerDay = in.PricePerDay
	c.Currency = normalizeCurrency(in.Currency)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a car. Cars with existing reservations are protected;
// the caller must delete or move those bookings first.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if s.reservations != nil {
		n, err := s.reservations.CountByCar(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("car %d has %d reservations: %w", id, n, apperr.ErrConflict)
		}
	}
	return s.repo.Delete(ctx, id)
}

func normalizeCurrency(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "PLN"
	}
	return strings.ToUpper(c)
}
