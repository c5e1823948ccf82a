package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/DriveBook/DriveBook/internal/catalog"
	"github.com/DriveBook/DriveBook/internal/common/apperr"
)

// CarSource is the slice of the catalog the booking service needs.
type CarSource interface {
	FindByID(ctx context.Context, id uint) (*catalog.Car, error)
	List(ctx context.Context) ([]catalog.Car, error)
}

// Actor is the authenticated caller as the booking rules see it: an id plus
// whether the admin capability is present.
type Actor struct {
	UserID string
	Admin  bool
}

// Service implements availability filtering and the reservation lifecycle.
type Service struct {
	repo Repo
	cars CarSource
}

func NewService(repo Repo, cars CarSource) *Service {
	return &Service{repo: repo, cars: cars}
}

// AvailableCar is a catalog entry annotated with its choice label for the
// requested range.
type AvailableCar struct {
	catalog.Car
	Label string `json:"label"`
}

// AvailableCars returns the cars with no reservation overlapping [start, end),
// ordered by id. The scan is read-only; the authoritative re-check happens
// inside Create.
func (s *Service) AvailableCars(ctx context.Context, start, end time.Time) ([]AvailableCar, error) {
	start, end, err := NormalizeRange(start, end)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReservedCarIDs(ctx, start, end)
	if err != nil {
		return nil, err
	}
	taken := make(map[uint]struct{}, len(reserved))
	for _, id := range reserved {
		taken[id] = struct{}{}
	}

	cars, err := s.cars.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AvailableCar, 0, len(cars))
	for _, c := range cars {
		if _, ok := taken[c.ID]; ok {
			continue
		}
		out = append(out, AvailableCar{Car: c, Label: c.Label()})
	}
	return out, nil
}

// Create books a car for the actor. The car must exist and must still be free
// for the range; the overlap re-check and insert are one atomic unit, so a
// filter result that went stale loses with ErrConflict instead of
// double-booking.
func (s *Service) Create(ctx context.Context, actor Actor, carID uint, start, end time.Time) (*Reservation, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("missing caller identity: %w", apperr.ErrUnauthorized)
	}
	start, end, err := NormalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := s.cars.FindByID(ctx, carID); err != nil {
		return nil, err
	}

	res := &Reservation{
		CarID:     carID,
		UserID:    actor.UserID,
		StartDate: start,
		EndDate:   end,
		Version:   1,
	}
	if err := s.repo.CreateIfAvailable(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns one reservation. Non-admin callers only see their own rows.
func (s *Service) Get(ctx context.Context, actor Actor, id uint) (*Reservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, res); err != nil {
		return nil, err
	}
	return res, nil
}

// List returns the ledger filtered by ownership: admins get every row,
// everyone else only their own.
func (s *Service) List(ctx context.Context, actor Actor) ([]Reservation, error) {
	if actor.Admin {
		return s.repo.List(ctx)
	}
	if actor.UserID == "" {
		return nil, fmt.Errorf("missing caller identity: %w", apperr.ErrUnauthorized)
	}
	return s.repo.ListByUser(ctx, actor.UserID)
}

// UpdateDates changes a reservation's interval. Car and owner are immutable.
// A concurrent writer that commits first wins; the loser gets ErrConflict,
// or ErrNotFound if the row was deleted in between.
func (s *Service) UpdateDates(ctx context.Context, actor Actor, id uint, start, end time.Time) (*Reservation, error) {
	start, end, err := NormalizeRange(start, end)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, res); err != nil {
		return nil, err
	}

	res.StartDate = start
	res.EndDate = end
	if err := s.repo.UpdateDates(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes a reservation the actor owns (or any, for admins).
func (s *Service) Delete(ctx context.Context, actor Actor, id uint) error {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, res); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// authorize is the ownership rule: admins pass, owners pass, everyone else
// gets ErrForbidden. Applied on read and write alike.
func (s *Service) authorize(actor Actor, res *Reservation) error {
	if actor.Admin {
		return nil
	}
	if actor.UserID == "" {
		return fmt.Errorf("missing caller identity: %w", apperr.ErrUnauthorized)
	}
	if res.UserID != actor.UserID {
		return fmt.Errorf("reservation %d belongs to another user: %w", res.ID, apperr.ErrForbidden)
	}
	return nil
}
